package rod

// Pages served to the adapter tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="login">
		<input id="username" type="text" name="user-name" />
		<input id="password" type="password" name="password" />
		<input id="login-button" type="submit" value="Login" />
	</form>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	InventoryHTML = `<!DOCTYPE html>
<html>
<body>
	<select class="product_sort_container">
		<option value="az">Name (A to Z)</option>
		<option value="za">Name (Z to A)</option>
		<option value="lohi">Price (low to high)</option>
		<option value="hilo">Price (high to low)</option>
	</select>
	<div class="inventory_list">
		<div class="inventory_item">
			<div class="inventory_item_name">Sauce Labs Backpack</div>
			<div class="inventory_item_price">$29.99</div>
			<button id="add-backpack" data-test="add-to-cart-sauce-labs-backpack">Add to cart</button>
		</div>
		<div class="inventory_item">
			<div class="inventory_item_name">Sauce Labs Bike Light</div>
			<div class="inventory_item_price">$9.99</div>
		</div>
	</div>
	<div id="hidden" style="display:none">hidden</div>
</body>
</html>`
)
