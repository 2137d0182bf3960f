package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dm-vev/hikari/dsl/tag"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/spf13/cobra"
)

type dumpConfig struct {
	encoding string
	filter   string
	hash     bool
}

// NewNBTCmd creates the nbt command.
func NewNBTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nbt",
		Short: "Inspect NBT files",
	}
	cmd.AddCommand(newDumpCmd())
	return cmd
}

func newDumpCmd() *cobra.Command {
	cfg := &dumpConfig{}
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print every compound of an NBT file as SNBT",
		Long: `Print every compound stored in an NBT file, such as a block state palette,
one per line. Compounds are read until the end of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			return dump(cmd.OutOrStdout(), f, cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.encoding, "encoding", "network", "NBT encoding: network, little or big")
	cmd.Flags().StringVar(&cfg.filter, "filter", "", "only print compounds whose name contains this text")
	cmd.Flags().BoolVar(&cfg.hash, "hash", false, "prefix every compound with its hash")
	return cmd
}

func encodingByName(name string) (tag.Encoding, error) {
	switch strings.ToLower(name) {
	case "network", "":
		return tag.NetworkLittleEndian, nil
	case "little", "le":
		return tag.LittleEndian, nil
	case "big", "be", "java":
		return tag.BigEndian, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

func dump(w io.Writer, r io.Reader, cfg *dumpConfig) error {
	enc, err := encodingByName(cfg.encoding)
	if err != nil {
		return err
	}
	br := bufio.NewReader(r)
	dec := nbt.NewDecoderWithEncoding(br, enc)
	for n := 0; ; n++ {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			return nil
		}
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("decode compound %d: %w", n, err)
		}
		c, err := tag.FromNBT(m)
		if err != nil {
			return fmt.Errorf("convert compound %d: %w", n, err)
		}
		if cfg.filter != "" {
			name, _ := tag.Value[string](c, "name")
			if !strings.Contains(name, cfg.filter) {
				continue
			}
		}
		if cfg.hash {
			fmt.Fprintf(w, "%016x ", c.Hash())
		}
		fmt.Fprintln(w, c.String())
	}
}
