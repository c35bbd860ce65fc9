// Command fastsynth synthesizes an AIFF audio file from a partial
// track stored in SDIF or SPC format, applying scalar frequency,
// amplitude and bandwidth transforms and an optional time dilation
// (spec §6, reference fastsynth utility).
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lorisynth/loris/aiffio"
	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/noise"
	"github.com/lorisynth/loris/partial"
	"github.com/lorisynth/loris/partialutils"
	"github.com/lorisynth/loris/sdif"
	"github.com/lorisynth/loris/spc"
	"github.com/lorisynth/loris/synth"
	"github.com/spf13/pflag"
)

const (
	defaultSampleRate = 44100.0
	blockLen          = 64
	noiseRingLen      = 4096
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "fastsynth"})

	flags := pflag.NewFlagSet("fastsynth", pflag.ContinueOnError)
	rate := flags.Float64("rate", defaultSampleRate, "output sample rate in Hz")
	freqScale := flags.Float64("freq", 1.0, "frequency scale factor")
	ampScale := flags.Float64("amp", 1.0, "amplitude scale factor")
	bwScale := flags.Float64("bw", 1.0, "bandwidth scale factor")
	outPath := flags.StringP("o", "o", "out.aiff", "output AIFF file path")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: fastsynth <file.sdif|file.spc> [-rate Hz] [-freq scale] [-amp scale] [-bw scale] [-o out.aiff] [times...]")
		flags.PrintDefaults()
	}

	// pflag reads "-rate" as a run of one-letter flags, so the single-dash
	// long forms shown in the usage line get their double-dash spelling.
	normalized := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") {
			name, _, _ := strings.Cut(a[1:], "=")
			switch name {
			case "rate", "freq", "amp", "bw":
				a = "-" + a
			}
		}
		normalized[i] = a
	}
	if err := flags.Parse(normalized); err != nil {
		return 1
	}

	positional := flags.Args()
	if len(positional) < 1 {
		flags.Usage()
		return 1
	}

	inPath := positional[0]
	dilationTargets, err := parseFloats(positional[1:])
	if err != nil {
		logger.Error("invalid dilation time", "err", err)
		return 1
	}

	list, midiNote, err := loadPartials(inPath)
	if err != nil {
		logger.Error("failed to load partials", "file", inPath, "err", err)
		return 1
	}

	if *freqScale != 1.0 {
		partialutils.ScaleFrequency(list, envelope.Const(*freqScale))
	}
	if *ampScale != 1.0 {
		partialutils.ScaleAmplitude(list, envelope.Const(*ampScale))
	}
	if *bwScale != 1.0 {
		partialutils.ScaleBandwidth(list, envelope.Const(*bwScale))
	}

	if len(dilationTargets) > 0 {
		if err := applyDilation(list, dilationTargets); err != nil {
			logger.Error("dilation failed", "err", err)
			return 1
		}
	}

	if midiNote >= 0 {
		logger.Info("synthesizing", "file", inPath, "midiNoteNumber", midiNote)
	}

	if err := synthesize(list, *rate, *outPath); err != nil {
		logger.Error("synthesis failed", "err", err)
		return 1
	}

	logger.Info("wrote", "file", *outPath)
	return 0
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func loadPartials(path string) (*partial.List, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, -1, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".sdif":
		frames, err := sdif.ReadFrames(f)
		if err != nil {
			return nil, -1, err
		}
		return sdif.ToPartialList(frames), -1, nil
	case ".spc":
		file, err := spc.Read(f)
		if err != nil {
			return nil, -1, err
		}
		return file.ToPartialList(), file.MIDINoteNumber, nil
	default:
		return nil, -1, fmt.Errorf("unrecognized file extension %q (want .sdif or .spc)", filepath.Ext(path))
	}
}

// markerCount is the number of named time markers fastsynth associates
// with a partial track. The SDIF/SPC partial matrix carries no marker
// chunk of its own (markers live on the AIFF side, per spec §3), so
// fastsynth always treats trailing positional arguments as either a
// single overall-duration target or as piecewise correspondence points
// evenly spaced across the track's time span.
const markerCount = 0

func applyDilation(list *partial.List, targets []float64) error {
	start, end := listTimeRange(list)
	if len(targets) == 1 && markerCount != 1 {
		return partialutils.Dilate(list, []float64{start, end}, []float64{start, targets[0]})
	}

	srcTimes := make([]float64, len(targets))
	span := end - start
	for i := range targets {
		frac := 0.0
		if len(targets) > 1 {
			frac = float64(i) / float64(len(targets)-1)
		}
		srcTimes[i] = start + frac*span
	}
	return partialutils.Dilate(list, srcTimes, targets)
}

func listTimeRange(list *partial.List) (start, end float64) {
	first := true
	for _, p := range list.All() {
		if p.IsDummy() {
			continue
		}
		if first || p.StartTime() < start {
			start = p.StartTime()
		}
		if first || p.EndTime() > end {
			end = p.EndTime()
		}
		first = false
	}
	return start, end
}

func synthesize(list *partial.List, sampleRate float64, outPath string) error {
	reader, err := synth.NewReader(list, blockLen, sampleRate)
	if err != nil {
		return err
	}

	source := noise.NewGenerator(1, sampleRate, 0)
	voice := synth.NewBlockSynth(list.Len(), blockLen, sampleRate, noiseRingLen, source)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := aiffio.NewWriter(out, int(math.Round(sampleRate)))
	block := make([]float64, blockLen)
	for n := 0; n < reader.NumFrames(); n++ {
		frame, err := reader.GetFrame(n)
		if err != nil {
			return err
		}
		voice.Synth(frame, block)
		if err := writer.WriteSamples(block); err != nil {
			return err
		}
	}
	return writer.Close()
}
