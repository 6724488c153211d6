package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/disease-predictor/internal/domain"
	"github.com/disease-predictor/internal/model"
	"github.com/disease-predictor/internal/report"
	"github.com/disease-predictor/internal/service"
)

func newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains [domain]",
		Short: "List prediction domains or show the input form of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry := model.NewRegistry(cfg.Models, logger)
			router := service.NewRouter(registry, report.NewPDFRenderer(), cfg.Report.OfferPolicy, logger)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 0 {
				fmt.Fprintln(w, "DOMAIN\tMENU\tMODEL\tDOCUMENT")
				for _, s := range registry.Status() {
					state := "unavailable"
					if s.Available {
						state = s.Version
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.Domain, s.Domain.MenuLabel(), state, report.Documented(s.Domain))
				}
				return nil
			}

			p, err := router.Route(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "FIELD\tLABEL\tKIND\tALLOWED")
			for _, f := range p.Spec().Fields {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Label, f.Kind, allowed(f))
			}
			return nil
		},
	}
}

func allowed(f domain.FieldDef) string {
	if f.Kind == domain.FieldCategorical {
		labels := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			labels[i] = c.Label
		}
		return strings.Join(labels, " | ")
	}

	var parts []string
	if f.Min != nil || f.Max != nil {
		lo, hi := "-inf", "+inf"
		if f.Min != nil {
			lo = fmt.Sprint(*f.Min)
		}
		if f.Max != nil {
			hi = fmt.Sprint(*f.Max)
		}
		parts = append(parts, fmt.Sprintf("[%s, %s]", lo, hi))
	}
	if f.Integer {
		parts = append(parts, "integer")
	}
	if f.Unit != "" {
		parts = append(parts, f.Unit)
	}
	if len(parts) == 0 {
		return "any number"
	}
	return strings.Join(parts, " ")
}
