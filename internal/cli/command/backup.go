package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/storage/atomicfile"
	"github.com/PerchunPak/nonbloat-db/internal/storage/backup"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
	"github.com/PerchunPak/nonbloat-db/internal/storage/wal"
	"github.com/PerchunPak/nonbloat-db/pkg/crypto/adaptive"
)

// BackupCommand returns the backup subcommand group.
func BackupCommand() *cli.Command {
	passphrase := &cli.StringFlag{
		Name:    "passphrase",
		Usage:   "encryption passphrase",
		EnvVars: []string{"NBDB_BACKUP_PASSPHRASE"},
	}
	progress := &cli.BoolFlag{
		Name:  "progress",
		Usage: "show a progress bar on stderr",
	}

	return &cli.Command{
		Name:  "backup",
		Usage: "Backup and restore management",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Write a compressed, optionally encrypted archive of the store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "archive `FILE` (default: nbdb-<timestamp>.nbbak)",
					},
					&cli.StringFlag{
						Name:  "compression",
						Usage: "zstd, snappy, lz4 or none",
						Value: string(backup.CompressionZstd),
					},
					&cli.StringFlag{
						Name:  "cipher",
						Usage: "aes-gcm or chacha20-poly1305 (default: fastest on this CPU)",
					},
					passphrase,
					progress,
				},
				Action: backupCreate,
			},
			{
				Name:      "restore",
				Usage:     "Replace the store with the contents of an archive",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					passphrase,
					progress,
					&cli.BoolFlag{
						Name:  "force",
						Usage: "overwrite an existing store",
					},
				},
				Action: backupRestore,
			},
			{
				Name:      "inspect",
				Usage:     "Show an archive header without decrypting it",
				ArgsUsage: "FILE",
				Action:    backupInspect,
			},
		},
	}
}

func backupCreate(c *cli.Context) error {
	compression, err := backup.ParseCompression(c.String("compression"))
	if err != nil {
		return err
	}
	cipherType, err := adaptive.ParseType(c.String("cipher"))
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = fmt.Sprintf("nbdb-%s.nbbak", time.Now().UTC().Format("20060102-150405"))
	}

	return withStore(c, func(_ context.Context, env *Env, store *storage.Engine) error {
		opts := backup.Options{
			Compression: compression,
			Passphrase:  []byte(c.String("passphrase")),
			Cipher:      cipherType,
		}

		var hdr *backup.Header
		err := atomicfile.Write(out, func(w io.Writer) error {
			var bar *output.ProgressBar
			if c.Bool("progress") {
				bar = output.NewProgressBar(env.Err, "backup", 0)
				w = bar.Writer(w)
			}
			var err error
			hdr, err = backup.Create(w, store, opts)
			if bar != nil {
				bar.Finish()
			}
			return err
		})
		if err != nil {
			return err
		}

		env.Logger.Info("backup created", "path", out, "id", hdr.ID, "keys", hdr.Keys)
		if env.Format == output.FormatTable {
			fmt.Fprintf(env.Out, "created %s\n", out)
		}
		return env.Print(hdr)
	})
}

func backupRestore(c *cli.Context) error {
	file, err := requireArg(c, 0, "FILE")
	if err != nil {
		return err
	}
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	target := env.Config.Store.Path

	if !c.Bool("force") {
		occupied, err := storeExists(target)
		if err != nil {
			return err
		}
		if occupied {
			return cli.Exit(fmt.Sprintf("%s already holds data, use --force to replace it", target), 1)
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	var bar *output.ProgressBar
	if c.Bool("progress") {
		size := int64(0)
		if fi, err := f.Stat(); err == nil {
			size = fi.Size()
		}
		bar = output.NewProgressBar(env.Err, "restore", size)
		r = bar.Reader(f)
	}

	obj, hdr, err := backup.Restore(r, []byte(c.String("passphrase")))
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if errors.Is(err, backup.ErrPassphraseRequired) {
			return cli.Exit("archive is encrypted, pass --passphrase or set NBDB_BACKUP_PASSPHRASE", 1)
		}
		return err
	}

	info, err := backup.Install(target, obj, codec.ParseIndent(env.Config.Store.Indent))
	if err != nil {
		return err
	}
	env.Logger.Info("backup restored", "path", target, "id", hdr.ID, "keys", info.Keys)
	fmt.Fprintf(env.Out, "restored %d keys from %s (backup %s) into %s\n", info.Keys, file, hdr.ID, target)
	return nil
}

func backupInspect(c *cli.Context) error {
	file, err := requireArg(c, 0, "FILE")
	if err != nil {
		return err
	}
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, err := backup.Inspect(f)
	if err != nil {
		return err
	}
	return env.Print(hdr)
}

// storeExists reports whether any of the store files are present.
func storeExists(path string) (bool, error) {
	for _, p := range []string{path, atomicfile.TempPath(path), wal.PathFor(path)} {
		ok, err := atomicfile.Exists(p)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
