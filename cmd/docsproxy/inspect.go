package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reactor/docsproxy"
	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/resolve"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <module> <version> [path]",
		Short: "Print the archive URL serving a documentation request",
		Long: `Resolve a module and an exact or symbolic version (release, milestone,
snapshot) the way the proxy does, and print the upstream URL.

The path defaults to the javadoc index, /docs/<module>/<version>/api/.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			module, spec := args[0], args[1]
			path := "/docs/" + module + "/" + spec + "/api/"
			if len(args) == 3 {
				path = args[2]
			}

			info, err := docsproxy.Locate(a.registry, a.urls, module, spec, path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			fmt.Fprintf(w, "module:\t%s\n", info.Module.Name)
			fmt.Fprintf(w, "version:\t%s\n", info.Version)
			fmt.Fprintf(w, "repository:\t%s\n", info.Repository)
			fmt.Fprintf(w, "category:\t%s\n", info.Category)
			fmt.Fprintf(w, "purl:\t%s\n", info.Module.PURL(info.Version.String()))
			fmt.Fprintf(w, "url:\t%s\n", info.URL)
			return w.Flush()
		},
	}
}

func newVersionsCmd(opts *rootOptions) *cobra.Command {
	var (
		refreshFirst bool
		showURLs     bool
	)

	cmd := &cobra.Command{
		Use:   "versions <module>",
		Short: "List the known versions of a module, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			m, ok := a.registry.Get(args[0])
			if !ok {
				return &core.NotFoundError{Module: args[0]}
			}

			if refreshFirst {
				if m.Feed == "" {
					return fmt.Errorf("module %s has no version feed", m.Name)
				}
				feed, err := core.NewFeed(m.Feed, a.cfg.FeedURL(m.Feed), a.feedClient())
				if err != nil {
					return err
				}
				raw, err := feed.FetchVersions(cmd.Context(), m.GroupID, m.ArtifactID)
				if err != nil {
					return fmt.Errorf("fetching versions of %s from %s: %w", m.Name, m.Feed, err)
				}
				if len(raw) > 0 {
					kept := m.ReplaceVersions(raw)
					a.logger.Debug("refreshed versions", "module", m.Name, "fetched", len(raw), "kept", kept)
				}
			}

			out := cmd.OutOrStdout()
			artifact := client.Artifact{Module: m.Name, GroupID: m.GroupID, ArtifactID: m.ArtifactID}
			for _, v := range m.Versions() {
				if !showURLs {
					fmt.Fprintln(out, v)
					continue
				}
				urls := client.BuildURLs(a.urls, resolve.Repository(m, v.String()), artifact, v)
				fmt.Fprintf(out, "%s\t%s\n", v, urls[client.Javadoc.String()])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refreshFirst, "refresh", false, "fetch the versions from the module's feed first")
	cmd.Flags().BoolVar(&showURLs, "urls", false, "print the javadoc archive URL of each version")
	return cmd
}
