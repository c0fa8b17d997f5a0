package main

import (
	"github.com/spf13/cobra"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/canon"
	"github.com/specforge/specforge/internal/status"
	"github.com/specforge/specforge/internal/workspace"
)

var resumeJSON bool

var resumeCmd = &cobra.Command{
	Use:   "resume <spec-id>",
	Short: "report which phase a run should resume at",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := resolveHome()
		if err != nil {
			return err
		}
		specID, err := workspace.SanitizeID(args[0])
		if err != nil {
			return err
		}
		paths := workspace.Resolve(home, specID)
		artifacts := artifact.New(paths.Artifacts)

		doc, err := status.BuildResume(specID, artifacts, paths.Exists())
		if err != nil {
			return err
		}

		if resumeJSON {
			data, err := canon.MarshalJCS(doc)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		cmd.Printf("resume at: %s\n", doc.Phase)
		for _, step := range doc.NextSteps {
			cmd.Printf("  - %s\n", step)
		}
		return nil
	},
}

func init() {
	resumeCmd.Flags().BoolVar(&resumeJSON, "json", false, "emit the resume-json.v1 document")
}
