package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/engine"
)

var (
	verifyURL        string
	verifyText       string
	verifyPlatform   string
	verifyScreenshot string
	verifyOutput     string
	verifyWait       time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Score an offer and print the verification result",
	Long: `Score an offer from any combination of source URL, offer text and screenshot.
The price history lives only for the duration of the command, so price consistency
checks never apply. The exit status is zero whenever a result is produced.`,
	Example: `  dealicious verify --url https://www.amazon.in/dp/B08X4J2Q3K --platform amazon.in
  dealicious verify --text "boAt Rockerz 450 now at 1,499" --screenshot ./offer.png
  dealicious verify --url https://flipkart.com/p/itm1 --output table`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyURL, "url", "", "Offer source URL")
	verifyCmd.Flags().StringVar(&verifyText, "text", "", "Offer text")
	verifyCmd.Flags().StringVar(&verifyPlatform, "platform", "", "Platform the offer was posted on")
	verifyCmd.Flags().StringVar(&verifyScreenshot, "screenshot", "", "Path to an offer screenshot")
	verifyCmd.Flags().StringVar(&verifyOutput, "output", "json", "Output format: json or table")
	verifyCmd.Flags().DurationVar(&verifyWait, "wait", 10*time.Second, "How long to wait for the similarity classifier")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyOutput != "json" && verifyOutput != "table" {
		return fmt.Errorf("invalid output format: %s (want json or table)", verifyOutput)
	}

	offer := &domain.OfferData{
		SourceURL: strings.TrimSpace(verifyURL),
		Text:      verifyText,
		Platform:  strings.TrimSpace(verifyPlatform),
	}
	if verifyScreenshot != "" {
		data, err := os.ReadFile(verifyScreenshot)
		if err != nil {
			return fmt.Errorf("failed to read screenshot: %w", err)
		}
		offer.Screenshot = data
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	eng := engine.New(cfg)
	eng.Start(ctx)

	result, err := verifyOffer(ctx, eng, offer, verifyWait)
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return writeResult(cmd.OutOrStdout(), result, verifyOutput)
}

// verifyOffer waits up to wait for classifier warm-up, then scores the offer.
// A warm-up that outlasts wait leaves the keyword classifier serving.
func verifyOffer(ctx context.Context, eng *engine.Engine, offer *domain.OfferData, wait time.Duration) (*domain.VerificationResult, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-eng.Service.Ready():
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return eng.Service.Verify(ctx, offer)
}

func writeResult(w io.Writer, result *domain.VerificationResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*domain.VerificationResult
			Decision domain.Decision `json:"decision"`
		}{result, result.Decision()})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Score:\t%d\n", result.ConfidenceScore)
	fmt.Fprintf(tw, "Verified:\t%t\n", result.IsVerified)
	fmt.Fprintf(tw, "Manual review:\t%t\n", result.NeedsManualReview)
	fmt.Fprintf(tw, "Decision:\t%s\n", result.Decision())
	fmt.Fprintf(tw, "Product:\t%s (%s)\n", result.ProductDetails.Title, result.ProductDetails.Platform)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "STEP\tSTATUS\tCONFIDENCE\tDETAILS")
	for _, step := range result.VerificationSteps {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\n", step.Step, step.Status, step.Confidence, step.Details)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(tw)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(tw, "Warning:\t%s\n", warning)
	}
	return tw.Flush()
}
