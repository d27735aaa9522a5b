package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/domain/settings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func criteriaCmd(connect func(*cobra.Command) (*services, func(), error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Show or change membership criteria",
	}
	cmd.AddCommand(criteriaShowCmd(connect))
	cmd.AddCommand(criteriaApplyCmd(connect))
	cmd.AddCommand(criteriaDefaultsCmd())
	return cmd
}

func criteriaShowCmd(connect func(*cobra.Command) (*services, func(), error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			criteria, err := svc.criteria.GetCriteria(cmd.Context())
			if errors.Is(err, settings.ErrCriteriaNotConfigured) {
				printf(cmd.OutOrStdout(), "membership criteria not configured\n")
				return nil
			}
			if err != nil {
				return err
			}
			return writeCriteria(cmd.OutOrStdout(), criteria, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return cmd
}

func criteriaApplyCmd(connect func(*cobra.Command) (*services, func(), error)) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Validate and store criteria from a JSON or YAML file",
		Long: `Validate and store membership criteria.

The file holds one object per tier (basic, silver, gold, platinum, vip) with
annual_revenue_min, total_visits_min and total_visits_max. Tiers and fields
left out keep their built-in defaults. Use "-f -" to read standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readCriteriaFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			svc, cleanup, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stored, err := svc.criteria.UpdateCriteria(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("criteria rejected: %w", err)
			}
			printf(cmd.OutOrStdout(), "membership criteria updated\n")
			return writeCriteria(cmd.OutOrStdout(), stored, false)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "criteria file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func criteriaDefaultsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in default criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeCriteria(cmd.OutOrStdout(), membership.DefaultCriteria(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return cmd
}

// readCriteriaFile returns the document as JSON. YAML input is converted.
func readCriteriaFile(stdin io.Reader, path string) ([]byte, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || (ext != ".yaml" && ext != ".yml" && json.Valid(raw)) {
		return raw, nil
	}
	return yamlToJSON(raw)
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse criteria YAML: %w", err)
	}
	if doc == nil {
		return nil, errors.New("criteria file is empty")
	}
	return json.Marshal(doc)
}

func writeCriteria(w io.Writer, criteria membership.Criteria, asJSON bool) error {
	raw, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		return err
	}
	if asJSON {
		printf(w, "%s\n", raw)
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// blockStyle drops the flow and quoting styles yaml.v3 records for JSON
// input so the encoder picks plain block style.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
