// Package generate writes synthetic PnL series for testing and benchmarks.
//
// A handful of "ideas" drive instrument returns. Each generated alpha is a
// noisy, smoothed view of one idea; its daily PnL is the alpha weighted sum
// of total returns and its turnover the relative change in positions.
package generate

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pnlcorr/internal/series"
)

// Options controls Run. Zero values take the defaults below.
type Options struct {
	Dir         string
	Num         int
	Force       bool
	Days        int
	Instruments int
	Ideas       int
	StartDate   int
	Seed        uint64
	Workers     int
	Logger      *zap.Logger
}

const (
	DefaultDays        = 2500
	DefaultInstruments = 30
	DefaultIdeas       = 10
	DefaultStartDate   = 20090101

	signalNoise = 0.01
	alphaNoise  = 0.02
)

func (o *Options) setDefaults() {
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if o.Instruments <= 0 {
		o.Instruments = DefaultInstruments
	}
	if o.Ideas <= 0 {
		o.Ideas = DefaultIdeas
	}
	if o.StartDate == 0 {
		o.StartDate = DefaultStartDate
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Run prepares opts.Dir and writes opts.Num files named pnl_0 ... pnl_<n-1>.
func Run(ctx context.Context, opts Options) error {
	opts.setDefaults()
	if opts.Num < 1 {
		return fmt.Errorf("number of files must be positive, got %d", opts.Num)
	}
	if err := prepareDir(opts.Dir, opts.Force); err != nil {
		return err
	}

	logger := opts.Logger
	dates, err := Dates(opts.StartDate, opts.Days)
	if err != nil {
		return err
	}

	start := time.Now()
	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	returns := Returns(rng, opts.Instruments, opts.Days, opts.Ideas)
	total := sumIdeas(returns)
	signals := observe(rng, returns)
	logger.Info("generated returns", zap.Int("ideas", opts.Ideas), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Num; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(opts.Seed, uint64(i)+1))
			s := alphaSeries(r, signals, total, dates)
			return series.Write(filepath.Join(opts.Dir, "pnl_"+strconv.Itoa(i)), s)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("write files: %w", err)
	}
	logger.Info("wrote pnl files",
		zap.String("dir", opts.Dir),
		zap.Int("files", opts.Num),
		zap.Int("days", opts.Days),
		zap.Uint64("seed", opts.Seed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func prepareDir(dir string, force bool) error {
	if dir == "" {
		return fmt.Errorf("output directory is required")
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return fmt.Errorf("stat output dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if !force {
		return fmt.Errorf("directory %s is not empty and force is not set", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear output dir: %w", err)
	}
	return os.MkdirAll(dir, 0o755)
}

// Dates returns n consecutive weekdays starting at start (YYYYMMDD), which
// is included when it is a weekday.
func Dates(start, n int) ([]int, error) {
	day, err := time.Parse("20060102", strconv.Itoa(start))
	if err != nil {
		return nil, fmt.Errorf("parse start date %d: %w", start, err)
	}
	out := make([]int, 0, n)
	for len(out) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, day.Year()*10000+int(day.Month())*100+day.Day())
		}
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}

// Returns draws k idea return matrices, days x instruments each, with mean
// zero and standard deviation 0.02/sqrt(i) for the i-th idea.
func Returns(r *rand.Rand, instruments, days, k int) [][][]float64 {
	out := make([][][]float64, k)
	for i := range out {
		sd := 0.02 / math.Sqrt(float64(i+1))
		out[i] = normalMatrix(r, days, instruments, sd)
	}
	return out
}

// Smooth applies s[0] = a[0], s[d] = l*s[d-1] + sqrt(1-l^2)*a[d] to a
// days x instruments alpha in place.
func Smooth(alpha [][]float64, lambda float64) {
	scale := math.Sqrt(1 - lambda*lambda)
	for d := 1; d < len(alpha); d++ {
		prev, cur := alpha[d-1], alpha[d]
		for j := range cur {
			cur[j] = lambda*prev[j] + scale*cur[j]
		}
	}
}

// Pnl is the daily sum of positions times total instrument returns.
func Pnl(alpha, total [][]float64) []float64 {
	out := make([]float64, len(alpha))
	for d, row := range alpha {
		var sum float64
		for j, v := range row {
			sum += v * total[d][j]
		}
		out[d] = sum
	}
	return out
}

// Turnover is the traded fraction of the previous day's book; zero on the
// first day.
func Turnover(alpha [][]float64) []float64 {
	out := make([]float64, len(alpha))
	for d := 1; d < len(alpha); d++ {
		var traded, held float64
		for j, v := range alpha[d] {
			traded += math.Abs(v - alpha[d-1][j])
			held += math.Abs(alpha[d-1][j])
		}
		out[d] = traded / held
	}
	return out
}

func alphaSeries(r *rand.Rand, signals [][][]float64, total [][]float64, dates []int) series.Series {
	idea := signals[r.IntN(len(signals))]
	alpha := normalMatrix(r, len(dates), len(total[0]), alphaNoise)
	for d := range alpha {
		for j := range alpha[d] {
			alpha[d][j] += idea[d][j]
		}
	}
	Smooth(alpha, r.Float64())
	return series.Series{Dates: dates, Pnl: Pnl(alpha, total), Turnover: Turnover(alpha)}
}

func sumIdeas(returns [][][]float64) [][]float64 {
	days, instruments := len(returns[0]), len(returns[0][0])
	total := make([][]float64, days)
	for d := range total {
		total[d] = make([]float64, instruments)
		for _, idea := range returns {
			for j, v := range idea[d] {
				total[d][j] += v
			}
		}
	}
	return total
}

func observe(r *rand.Rand, returns [][][]float64) [][][]float64 {
	out := make([][][]float64, len(returns))
	for i, idea := range returns {
		noisy := normalMatrix(r, len(idea), len(idea[0]), signalNoise)
		for d := range noisy {
			for j := range noisy[d] {
				noisy[d][j] += idea[d][j]
			}
		}
		out[i] = noisy
	}
	return out
}

func normalMatrix(r *rand.Rand, rows, cols int, sd float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		for j := range row {
			row[j] = r.NormFloat64() * sd
		}
		out[i] = row
	}
	return out
}
