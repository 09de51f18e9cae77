package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/filtering"
	"github.com/ucformula/sponsor-scout/internal/outreach"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const (
	PromptAll  = "All sponsors"
	PromptExit = "exit"
)

var errExit = errors.New("exit requested")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render outreach email templates for stored sponsors",
	Run: func(cmd *cobra.Command, _ []string) {
		generate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("sponsor", "s", "", "render the template for the first sponsor whose name contains this text")
	generateCmd.Flags().BoolP("interactive", "i", false, "pick sponsors from a list")
	generateCmd.Flags().Bool("print", false, "print the rendered template")
	generateCmd.Flags().String("aspect", "", "company trait mentioned in the letter (overrides outreach.defaults.specific-aspect)")
}

func generate(cmd *cobra.Command) {
	ctx := context.Background()

	a := bootstrap(ctx)
	defer a.close(ctx)
	logger := a.logger

	svc := a.outreach(ctx)

	params := outreach.Params{}
	if aspect, _ := cmd.Flags().GetString("aspect"); aspect != "" {
		params.SpecificAspect = aspect
	}
	show, _ := cmd.Flags().GetBool("print")

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := generateInteractive(ctx, a, svc, params, show); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	if name, _ := cmd.Flags().GetString("sponsor"); name != "" {
		if err := generateOne(ctx, logger, svc, name, params, show); err != nil {
			logger.Fatal("generating template", zap.Error(err))
		}
		return
	}

	paths, err := svc.GenerateAll(ctx, params)
	if errors.Is(err, outreach.ErrNoSponsors) {
		logger.Info("exiting", zap.String("reason", "no sponsors found, run discover first"))
		return
	}
	if err != nil {
		logger.Fatal("generating templates", zap.Error(err))
	}

	logger.Info("generated templates", zap.Int("count", len(paths)), zap.Any("paths", paths))
}

func generateOne(ctx context.Context, logger *zap.Logger, svc *outreach.Service, name string, params outreach.Params, show bool) error {
	result, err := svc.GenerateForSponsor(ctx, name, params)
	if err != nil {
		return err
	}

	logger.Info("generated template",
		zap.String("sponsor", result.SponsorName),
		zap.String("path", result.Path),
	)
	if show {
		return printTemplate(result.Path)
	}
	return nil
}

// printTemplate prints the letter as written to disk.
func printTemplate(path string) error {
	content, err := outreach.GetTemplateContent(path)
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}

func generateInteractive(ctx context.Context, a *application, svc *outreach.Service, params outreach.Params, show bool) error {
	list, err := a.store.ListSponsors(ctx)
	if err != nil {
		return fmt.Errorf("loading sponsors: %w", err)
	}

	list, err = filtering.Run(ctx, &a.config.Filters, filtering.Deps{Logger: a.logger}, filtering.Configure(&a.config.Filters, filtering.Projection()), list)
	if err != nil {
		return err
	}

	for {
		if list.Len() == 0 {
			a.logger.Info("exiting", zap.String("reason", "no sponsors left"))
			return errExit
		}

		items := make([]string, 0, list.Len()+2)
		for _, c := range list.Items {
			items = append(items, sponsorLabel(c))
		}

		sponsorPrompt := promptui.Select{
			Label: "Choose a sponsor and press ENTER",
			Items: append([]string{PromptAll}, append(items, PromptExit)...),
			Size:  15,
		}

		idx, _, err := sponsorPrompt.Run()
		if err != nil {
			return err
		}

		chosen, all := pickedSponsor(list, idx)
		switch {
		case all:
			paths, err := svc.GenerateAll(ctx, params)
			if err != nil {
				return err
			}
			a.logger.Info("generated templates", zap.Int("count", len(paths)))
			return nil
		case chosen == nil:
			return errExit
		default:
			result, err := svc.Generate(ctx, chosen, params)
			if err != nil {
				return err
			}
			a.logger.Info("generated template", zap.String("sponsor", result.SponsorName), zap.String("path", result.Path))
			if show {
				if err := printTemplate(result.Path); err != nil {
					return err
				}
			}
			list.ExcludeNames([]string{chosen.Name})
		}
	}
}

// pickedSponsor maps a picker index to its entry: PromptAll comes first,
// then one entry per sponsor, then PromptExit. A nil sponsor without all means exit.
func pickedSponsor(list *sponsor.Candidates, idx int) (*sponsor.Candidate, bool) {
	switch {
	case idx == 0:
		return nil, true
	case idx >= 1 && idx <= list.Len():
		return list.Items[idx-1], false
	default:
		return nil, false
	}
}

func sponsorLabel(c *sponsor.Candidate) string {
	parts := []string{c.Name}
	if c.Website != "" {
		parts = append(parts, c.Website)
	}
	if c.Email != "" {
		parts = append(parts, c.Email)
	}
	return strings.Join(parts, " / ")
}
