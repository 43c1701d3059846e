package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sufield/yieldvault/internal/adapters/outbound/journal"
	"github.com/sufield/yieldvault/internal/domain"
)

func journalCommand(ctx context.Context, args []string, out io.Writer) error {
	cmd := &Command{Name: "journal", Description: "Print events stored in a journal directory", Usage: "vaultd journal <path> [--last N]"}
	fs := cmd.NewFlagSet(out)
	last := fs.Int("last", 0, "Print only the newest N events (0 prints all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("journal path required")
	}

	j, err := journal.Open(journal.Config{Path: fs.Arg(0)})
	if err != nil {
		return err
	}
	defer j.Close()

	enc := json.NewEncoder(out)
	if *last > 0 {
		evts, err := j.Recent(ctx, *last)
		if err != nil {
			return err
		}
		for _, e := range evts {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}
	return j.Replay(ctx, func(e domain.Event) error {
		return enc.Encode(e)
	})
}
