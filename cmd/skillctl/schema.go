package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/skill"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the SKILL.md front-matter JSON schema",
	Long:  `Print the JSON schema describing the SKILL.md front-matter format, for use in editor validation.`,
	Run: func(cmd *cobra.Command, _ []string) {
		payload, err := json.MarshalIndent(skill.Schema(), "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to marshal schema")
			os.Exit(1)
		}
		fmt.Println(string(payload))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
