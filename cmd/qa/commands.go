package main

import (
	"errors"
	"strings"

	"shopqa/internal/domain/entity"

	"github.com/spf13/cobra"
)

var errScenarioFailed = errors.New("scenario failed")

func newDataCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "data <kind>",
		Short: "Generate test data (users, products, checkout, ...)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			return a.print(c.Assistant.GenerateTestData(cmd.Context(), strings.Join(args, " "), count))
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of items to ask for")
	return cmd
}

func newScenariosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios <functionality>",
		Short: "Generate test scenarios for a piece of functionality",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			return a.print(c.Assistant.GenerateTestScenarios(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var d entity.ErrorDetails
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a test failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			return a.print(c.Assistant.AnalyzeFailure(cmd.Context(), d))
		},
	}
	cmd.Flags().StringVar(&d.Error, "error", "", "error message of the failed test")
	cmd.Flags().StringVar(&d.TestName, "test", "", "name of the failed test")
	cmd.Flags().StringVar(&d.CurrentPage, "page", "", "URL of the page at failure")
	cmd.Flags().StringVar(&d.Expected, "expected", "", "expected outcome")
	cmd.Flags().StringVar(&d.Actual, "actual", "", "actual outcome")
	cmd.Flags().StringVar(&d.Browser, "browser", "", "browser the test ran in")
	cmd.Flags().StringVar(&d.Username, "user", "", "test user")
	_ = cmd.MarkFlagRequired("error")
	return cmd
}

func newLocatorCmd(a *app) *cobra.Command {
	var pageContext string
	var list bool
	cmd := &cobra.Command{
		Use:   "locator <description>",
		Short: "Suggest a locator for an element",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			if list {
				return a.print(c.Assistant.SuggestLocators(cmd.Context(), description, pageContext))
			}
			return a.print(map[string]string{
				"description": description,
				"locator":     c.Assistant.SuggestLocator(cmd.Context(), description),
			})
		},
	}
	cmd.Flags().StringVar(&pageContext, "context", "", "page context for ranked suggestions")
	cmd.Flags().BoolVar(&list, "list", false, "return ranked suggestions instead of a single answer")
	return cmd
}

func newStepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <scenario>",
		Short: "Convert a scenario into executable steps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			return a.print(c.Assistant.GenerateTestSteps(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the QA agent a free-form question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			return a.print(map[string]string{
				"question": question,
				"answer":   c.Assistant.AskQuestion(cmd.Context(), question),
			})
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the configured test users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			return a.print(c.Users.All())
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario>",
		Short: "Generate steps for a scenario and run them in Chrome",
		Long: `run asks the agent for executable steps, runs them against the
storefront and, on the first failing step, saves a screenshot to
ARTIFACTS_DIR and prints the agent's failure analysis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			if err := c.StartBrowser(cmd.Context()); err != nil {
				return err
			}

			result, runErr := c.Runner.Execute(cmd.Context(), strings.Join(args, " "))
			if result != nil {
				if err := a.print(result); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if !result.Success {
				return errScenarioFailed
			}
			return nil
		},
	}
}
