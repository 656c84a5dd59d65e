package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldbot/agent/internal/route"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Inspect saved route files",
}

var pathsValidateCmd = &cobra.Command{
	Use:   "validate [file ...]",
	Short: "Report advisory problems with route files",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := args
		if len(files) == 0 {
			var err error
			files, err = route.List(cfg.Routes.Dir)
			if err != nil {
				return err
			}
		}
		if len(files) == 0 {
			fmt.Println("no route files found")
			return nil
		}

		failed := 0
		for _, file := range files {
			p, err := route.Load(file)
			if err != nil {
				failed++
				fmt.Printf("%s: %v\n", file, err)
				continue
			}
			problems := p.Validate()
			if len(problems) == 0 {
				fmt.Printf("%s: ok (%d waypoints)\n", file, p.Len())
				continue
			}
			for _, problem := range problems {
				fmt.Printf("%s: %s\n", file, problem)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d route file(s) could not be read", failed)
		}
		return nil
	},
}

func init() {
	pathsCmd.AddCommand(pathsValidateCmd)
	rootCmd.AddCommand(pathsCmd)
}
