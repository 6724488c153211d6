package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/disease-predictor/internal/app"
	"github.com/disease-predictor/internal/audit"
	"github.com/disease-predictor/internal/domain"
)

// appOptions are applied after the flag-derived options
var appOptions []app.Option

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <domain>",
		Short: "Run one prediction from a JSON file of field values",
		Long: `Run one prediction. The input is a JSON object mapping field names to
numbers, or to category labels for categorical fields. Use "-" to read
standard input. Run "predictctl domains <domain>" to list the fields.`,
		Args: cobra.ExactArgs(1),
		RunE: runPredict,
	}

	cmd.Flags().StringP("input", "i", "", "JSON file with the patient input (required)")
	cmd.Flags().String("pdf", "", "Write the report document to this path when it is offered")
	cmd.Flags().Bool("always-offer", false, "Offer the report document for every result")
	cmd.Flags().Bool("no-audit", false, "Do not record the prediction in the audit trail")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	input, err := readInput(cmd.InOrStdin(), inputPath)
	if err != nil {
		return err
	}

	var opts []app.Option
	if always, _ := cmd.Flags().GetBool("always-offer"); always {
		opts = append(opts, app.WithOfferPolicy(domain.OfferAlways))
	}
	if noAudit, _ := cmd.Flags().GetBool("no-audit"); noAudit {
		opts = append(opts, app.WithAuditStore(audit.NopStore{}))
	}

	opts = append(opts, appOptions...)

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline, err := a.Router.Route(args[0])
	if err != nil {
		return err
	}

	outcome, err := pipeline.Run(ctx, input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, outcome.Message)
	fmt.Fprintln(out)
	for _, f := range outcome.Report.Flags {
		fmt.Fprintf(out, "%s (%s): %s\n", f.Factor, strconv.FormatFloat(f.Value, 'f', -1, 64), f.Classification)
	}
	if len(outcome.Report.Flags) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, outcome.Explanation)

	entry := &audit.Entry{
		Domain:       outcome.Result.Domain,
		Label:        outcome.Result.Label,
		ModelVersion: outcome.Result.ModelVersion,
	}

	pdfPath, _ := cmd.Flags().GetString("pdf")
	var doc *domain.Document
	if outcome.OfferDocument {
		doc, err = pipeline.Document(outcome.Report)
		if err != nil {
			logger.WithError(err).Warn("Report document unavailable")
			fmt.Fprintln(cmd.ErrOrStderr(), "The report document could not be rendered.")
		}
	}
	entry.DocumentOffered = doc != nil

	if err := a.Audit.Record(ctx, entry); err != nil {
		logger.WithError(err).Warn("Failed to record prediction")
	}

	switch {
	case pdfPath == "":
	case !outcome.OfferDocument:
		fmt.Fprintln(cmd.ErrOrStderr(), "No report document is offered for this result.")
	case doc != nil:
		if err := os.WriteFile(pdfPath, doc.Data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(out, "\nReport written to %s\n", pdfPath)
	}
	return nil
}

func readInput(stdin io.Reader, path string) (domain.PatientInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var input domain.PatientInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	if input == nil {
		return nil, errors.New("input must be a JSON object of field values")
	}
	return input, nil
}
