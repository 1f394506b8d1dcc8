// Package acquire implements the one-shot URL acquisition command.
package acquire

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/libingest/cmd/common"
	"github.com/jonesrussell/libingest/internal/domain"
)

// Command returns the acquire command.
func Command() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "acquire [url]",
		Short: "Acquire a single URL into the content library",
		Long: `Fetch a remote resource and materialize it in object storage.
HTML pages and access-denied responses fall back to the scrape gateway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcquire(cmd, args[0], title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "override the derived title/filename")

	return cmd
}

// runAcquire executes one acquisition and reports the outcome.
func runAcquire(cmd *cobra.Command, rawURL, title string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	store, err := common.NewMaterializer(deps)
	if err != nil {
		return err
	}

	acquirer := common.NewAcquirer(deps, store)
	outcome := acquirer.Acquire(cmd.Context(), domain.AcquisitionRequest{
		URL:   rawURL,
		Title: title,
	})

	return reportOutcome(cmd, outcome)
}

// reportOutcome prints the outcome and maps failure states to a non-zero
// exit.
func reportOutcome(cmd *cobra.Command, outcome *domain.AcquisitionOutcome) error {
	switch outcome.State {
	case domain.AcquisitionStored:
		cmd.Printf("stored %s (%d bytes, %s)\n", outcome.Locator, outcome.SizeBytes, outcome.ContentType)
		return nil
	case domain.AcquisitionScraped:
		cmd.Printf("scraped %q to %s (%d bytes)\n", outcome.Title, outcome.Locator, outcome.SizeBytes)
		return nil
	case domain.AcquisitionBlocked:
		return fmt.Errorf("blocked: %s", outcome.Reason)
	default:
		return errors.New(outcome.Reason)
	}
}
