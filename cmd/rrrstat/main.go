// Command rrrstat reports how well a bitmap compresses as an RRR bit vector.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/bits-and-blooms/bitset"
	"github.com/bpot/rrr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := CMD().Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("rrrstat failed")
	}
}

func CMD() *cli.Command {
	return &cli.Command{
		Name:      "rrrstat",
		Usage:     "Reports RRR compression of a little-endian bitmap file",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logrus level",
				Value:   "info",
				Sources: cli.EnvVars("RRR_LOG_LEVEL"),
			},
			&cli.Uint64Flag{
				Name:  "random",
				Usage: "generate a random bitmap of this many bits instead of reading FILE",
			},
			&cli.IntFlag{
				Name:    "density",
				Usage:   "percentage of set bits for --random",
				Value:   10,
				Sources: cli.EnvVars("RRR_DENSITY"),
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "seed for --random",
				Value:   1,
				Sources: cli.EnvVars("RRR_SEED"),
			},
			&cli.BoolFlag{
				Name:  "classes",
				Usage: "print the number of blocks per class",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "check every query against the uncompressed bitmap",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, c *cli.Command) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	var bv *bitset.BitSet
	if n := c.Uint64("random"); n > 0 {
		bv = random(n, c.Int("density"), c.Int64("seed"))
	} else {
		path := c.Args().First()
		if path == "" {
			return errors.New("missing FILE or --random")
		}
		bv, err = readBitmap(path)
		if err != nil {
			return err
		}
	}

	log := logrus.WithField("size", bv.Len())
	log.Debug("compressing")
	r, err := rrr.New(bv)
	if err != nil {
		return err
	}

	raw := (r.Size() + 7) / 8
	log.WithFields(logrus.Fields{
		"ones":       r.Ones(),
		"raw_bytes":  raw,
		"rrr_bytes":  r.SizeInBytes(),
		"ratio":      ratio(r.SizeInBytes(), raw),
		"code_width": codeWidth(r),
	}).Info("compressed")

	if c.Bool("classes") {
		for class, n := range r.ClassHistogram() {
			if n == 0 {
				continue
			}
			fmt.Fprintf(c.Root().Writer, "%2d\t%d\t%d\n", class, rrr.ClassWidth(uint64(class)), n)
		}
	}

	if c.Bool("verify") {
		if err := verify(bv, r); err != nil {
			return err
		}
		log.Info("verified")
	}
	return nil
}

// readBitmap reads path as a bitmap where bit i is bit i%8 of byte i/8.
func readBitmap(path string) (*bitset.BitSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading bitmap %q", path)
	}
	bv := bitset.New(uint(len(data) * 8))
	for i, b := range data {
		for j := 0; j < 8; j++ {
			if b>>j&1 == 1 {
				bv.Set(uint(i*8 + j))
			}
		}
	}
	return bv, nil
}

func random(size uint64, density int, seed int64) *bitset.BitSet {
	rnd := rand.New(rand.NewSource(seed))
	bv := bitset.New(uint(size))
	for i := uint(0); i < uint(size); i++ {
		if rnd.Intn(100) < density {
			bv.Set(i)
		}
	}
	return bv
}

// codeWidth is the mean number of code bits per block.
func codeWidth(r *rrr.RRR) float64 {
	var blocks, width uint64
	for class, n := range r.ClassHistogram() {
		blocks += n
		width += n * rrr.ClassWidth(uint64(class))
	}
	if blocks == 0 {
		return 0
	}
	return float64(width) / float64(blocks)
}

func ratio(compressed, raw uint64) float64 {
	if raw == 0 {
		return 0
	}
	return float64(compressed) / float64(raw)
}

func verify(bv *bitset.BitSet, r *rrr.RRR) error {
	var ones, zeroes uint64
	for i := uint64(0); i < r.Size(); i++ {
		set := bv.Test(uint(i))
		bit, rank := r.BitAndRank(i)
		if bit != set || rank != ones {
			return errors.Errorf("bit %d: expected (%t, %d); got (%t, %d)", i, set, ones, bit, rank)
		}
		if set {
			if got := r.Select1(ones); got != i {
				return errors.Errorf("select1 %d: expected %d; got %d", ones, i, got)
			}
			ones++
		} else {
			if got := r.Select0(zeroes); got != i {
				return errors.Errorf("select0 %d: expected %d; got %d", zeroes, i, got)
			}
			zeroes++
		}
	}
	if !bv.Equal(r.Uncompress()) {
		return errors.New("uncompressed bitmap differs")
	}
	return nil
}
