// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-media/internal/chapter"
	"github.com/taibuivan/yomira-media/internal/storage"
)

// StoreOpener builds the store a command operates on.
type StoreOpener func() (*storage.Store, error)

// newRootCommand returns the root command with all subcommands attached.
func newRootCommand(open StoreOpener, logger *slog.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:          "mediactl",
		Short:        "Inspect and maintain the media storage root.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newResolveCommand(open))
	rootCmd.AddCommand(newListCommand(open))
	rootCmd.AddCommand(newFindCommand(open))
	rootCmd.AddCommand(newExtractCommand(open, logger))
	return rootCmd
}

// descriptorFrom reads "<kind> [id]" positional arguments.
func descriptorFrom(args []string, chapterKey string) (storage.Descriptor, error) {
	kind, err := storage.ParseKind(args[0])
	if err != nil {
		return storage.Descriptor{}, err
	}
	descriptor := storage.Descriptor{Kind: kind, ChapterKey: chapterKey}
	if len(args) > 1 {
		descriptor.ID = args[1]
	}
	return descriptor, nil
}

func newResolveCommand(open StoreOpener) *cobra.Command {
	var chapterKey string
	cmd := &cobra.Command{
		Use:   "resolve <kind> [id]",
		Short: "Print the directory a descriptor maps to",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			descriptor, err := descriptorFrom(args, chapterKey)
			if err != nil {
				return err
			}
			dir, err := store.Dir(descriptor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&chapterKey, "chapter", "", "chapter key (vol-{volume}-cap-{index}) for series-chapter")
	return cmd
}

func newListCommand(open StoreOpener) *cobra.Command {
	var chapterKey string
	cmd := &cobra.Command{
		Use:     "ls <kind> [id]",
		Aliases: []string{"list"},
		Short:   "List stored files with sizes and dimensions",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			descriptor, err := descriptorFrom(args, chapterKey)
			if err != nil {
				return err
			}
			dir, err := store.Dir(descriptor)
			if err != nil {
				return err
			}
			files, err := store.List(cmd.Context(), dir)
			if err != nil {
				return err
			}

			var total int64
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tFILE\tSIZE\tDIMENSIONS\tMODIFIED")
			for _, file := range files {
				total += file.Size
				dims := "-"
				if file.Width != nil && file.Height != nil {
					dims = fmt.Sprintf("%dx%d", *file.Width, *file.Height)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					file.Name, file.FileName, humanize.Bytes(uint64(file.Size)), dims, humanize.Time(file.ModifiedAt))
			}
			if err := writer.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s files, %s\n", humanize.Comma(int64(len(files))), humanize.Bytes(uint64(total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&chapterKey, "chapter", "", "chapter key for series-chapter")
	return cmd
}

func newFindCommand(open StoreOpener) *cobra.Command {
	var chapterKey string
	cmd := &cobra.Command{
		Use:   "find <kind> [id] <name>",
		Short: "Find the stored variant of a logical name",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			name := args[len(args)-1]
			descriptor, err := descriptorFrom(args[:len(args)-1], chapterKey)
			if err != nil {
				return err
			}
			dir, err := store.Dir(descriptor)
			if err != nil {
				return err
			}
			path, err := store.Find(dir, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&chapterKey, "chapter", "", "chapter key for series-chapter")
	return cmd
}

func newExtractCommand(open StoreOpener, logger *slog.Logger) *cobra.Command {
	var address chapter.Address
	cmd := &cobra.Command{
		Use:   "extract <archive.zip>",
		Short: "Replace a chapter's pages with the images of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}

			archive, err := store.Fs().Open(args[0])
			if err != nil {
				return err
			}
			defer archive.Close()

			service := chapter.NewService(store, nil, logger)
			pages, err := service.UploadArchive(cmd.Context(), address, archive, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			var total int64
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ORDER\tFILE\tSIZE")
			for _, page := range pages {
				total += page.FileSize
				fmt.Fprintf(writer, "%d\t%s\t%s\n", page.Order, page.ImageURL, humanize.Bytes(uint64(page.FileSize)))
			}
			if err := writer.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages, %s\n", len(pages), humanize.Bytes(uint64(total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&address.SeriesID, "series", "", "series id")
	cmd.Flags().StringVar(&address.Volume, "volume", "", "volume number")
	cmd.Flags().StringVar(&address.Index, "index", "", "chapter index")
	_ = cmd.MarkFlagRequired("series")
	_ = cmd.MarkFlagRequired("volume")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
