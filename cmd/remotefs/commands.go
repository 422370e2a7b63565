package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH",
		Short: "Print metadata for PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := otel.Tracer("remotefs").Start(cmd.Context(), "stat")
			defer span.End()

			if a.flags.useFS {
				return fsStat(a.fsys(ctx), args[0], a.out)
			}

			return adapterStat(ctx, a.adapter, args[0], a.out)
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat PATH...",
		Short: "Concatenate the contents of PATH(s) to standard output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := otel.Tracer("remotefs").Start(cmd.Context(), "cat")
			defer span.End()

			if a.flags.useFS {
				return fsCat(a.fsys(ctx), args, a.out)
			}

			return adapterCat(ctx, a.adapter, args, a.out)
		},
	}
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Print whether PATH exists, exiting with status 1 if not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := otel.Tracer("remotefs").Start(cmd.Context(), "exists")
			defer span.End()

			exists := a.adapter.Has(ctx, args[0])

			fmt.Fprintln(a.out, exists)

			if !exists {
				return errAbsent
			}

			return nil
		},
	}
}

func adapterStat(ctx context.Context, ad remotefs.Adapter, name string, w io.Writer) error {
	md, err := ad.GetMetadata(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, `%s:
	Size:         %s
	Modified:     %s
	Content-Type: %s
	Visibility:   %s
`, name, formatSize(md.Size), formatTime(md.ModTime()), md.MimeType, md.Visibility)

	return nil
}

func adapterCat(ctx context.Context, ad remotefs.Adapter, names []string, w io.Writer) error {
	for _, name := range names {
		res, err := ad.ReadStream(ctx, name)
		if err != nil {
			return err
		}

		_, err = io.Copy(w, res.Stream)
		_ = res.Stream.Close()

		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
	}

	return nil
}

func fsCat(fsys fs.FS, files []string, w io.Writer) error {
	for _, name := range files {
		f, err := fsys.Open(name)
		if err != nil {
			return err
		}

		if _, err := io.Copy(w, f); err != nil {
			_ = f.Close()

			return err
		}

		_ = f.Close()
	}

	return nil
}

func fsStat(fsys fs.FS, name string, w io.Writer) error {
	fi, err := fs.Stat(fsys, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, `%s:
	Size:         %s
	Modified:     %s
	Mode:         %s
	Content-Type: %s
`, name, formatSize(fi.Size()), formatTime(fi.ModTime()), fi.Mode(), remotefs.ContentType(fi))

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	return t.Format(time.RFC3339)
}

func formatSize(size int64) string {
	switch {
	case size <= 1024:
		return fmt.Sprintf("%dB", size)
	case size <= 1024*1024:
		return fmt.Sprintf("%.1fKiB", float64(size)/1024)
	case size <= 1024*1024*1024:
		return fmt.Sprintf("%.1fMiB", float64(size)/1024/1024)
	default:
		return fmt.Sprintf("%.1fGiB", float64(size)/1024/1024/1024)
	}
}
