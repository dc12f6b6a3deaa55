package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chroniclehub/ligature"
	"github.com/chroniclehub/ligature/cmd"
	"github.com/chroniclehub/ligature/render"
	"github.com/chroniclehub/ligature/tracker"
	"github.com/chroniclehub/ligature/tracker/gomidi"
	"github.com/chroniclehub/ligature/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	lintOnly := flag.Bool("lint", false, "Only check the tracks and print the diagnostics. Exits with 1 if any track has errors.")
	format := flag.Bool("f", false, "Output the track in the canonical Ligature format as .lig file.")
	jsonOut := flag.Bool("j", false, "Output the parsed track as .json file.")
	yamlOut := flag.Bool("y", false, "Output the parsed track as .yml file.")
	midiOut := flag.Bool("m", false, "Output the track as a standard MIDI file (.mid).")
	gridOut := flag.Bool("g", false, "Print the tracker grid of the playlist row given by -row, or of the pattern given by -pattern.")
	arrangementOut := flag.Bool("a", false, "Print the arrangement of the playlist.")
	row := flag.Int("row", 1, "Playlist row (1-based) shown by -g.")
	pattern := flag.String("pattern", "", "Pattern shown by -g. Overrides -row.")
	stepsPerChar := flag.Int("steps-per-char", 4, "Steps per character of the arrangement boxes printed by -a.")
	color := flag.Bool("color", false, "Color the printed grid and arrangement when writing to a terminal.")
	tmplDir := flag.String("t", "", "Use the templates in this directory instead of the standard templates when printing.")
	outPath := flag.String("o", "", "Directory where to write the output files. Directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	play := flag.Bool("p", false, "Play the tracks through a MIDI output port.")
	port := flag.String("port", "", "Play through the first MIDI output port whose name starts with this prefix.")
	listPorts := flag.Bool("ports", false, "List the MIDI output ports.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *listPorts {
		for _, name := range cmd.MIDIOutputs() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	prefs := tracker.MakePreferences()
	if prefs.YmlError != nil {
		log.Printf("error loading preferences: %v", prefs.YmlError)
	}
	var renderer *render.Renderer
	if *gridOut || *arrangementOut {
		var err error
		if *tmplDir != "" {
			renderer, err = render.NewFromTemplates(*tmplDir)
		} else {
			renderer, err = render.New()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating renderer: %v\n", err)
			os.Exit(1)
		}
		renderer.StepsPerChar = *stepsPerChar
		renderer.Color = *color
	}
	var midiSender gomidi.Sender
	closeMIDI := func() {}
	if *play {
		var err error
		midiSender, closeMIDI, err = cmd.OpenMIDIOut(*port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open MIDI output: %v\n", err)
			os.Exit(1)
		}
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		_, name := filepath.Split(filename)
		dir := *outPath
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		text := string(inputBytes)
		diagnostics := ligature.Lint(text)
		for _, d := range diagnostics {
			fmt.Fprintf(os.Stderr, "%v:%v\n", filename, d)
		}
		track, err := ligature.Parse(text, nil)
		if err != nil {
			return fmt.Errorf("could not parse the track: %w", err)
		}
		if *lintOnly {
			return nil
		}
		if *format {
			if err := output(filename, ".lig", []byte(ligature.Serialize(track))); err != nil {
				return fmt.Errorf("error outputting lig file: %v", err)
			}
		}
		if *jsonOut {
			jsonTrack, err := json.MarshalIndent(track, "", "  ")
			if err != nil {
				return fmt.Errorf("could not marshal the track as json file: %v", err)
			}
			if err := output(filename, ".json", jsonTrack); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlTrack, err := yaml.Marshal(track)
			if err != nil {
				return fmt.Errorf("could not marshal the track as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlTrack); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		if *midiOut {
			var b bytes.Buffer
			if err := gomidi.WriteSMF(&b, track); err != nil {
				return fmt.Errorf("could not write the track as MIDI file: %v", err)
			}
			if err := output(filename, ".mid", b.Bytes()); err != nil {
				return fmt.Errorf("error outputting MIDI file: %v", err)
			}
		}
		if renderer != nil {
			model := tracker.NewModel(nil, nil, nil, prefs, "")
			model.SetText(text)
			if *pattern != "" {
				if _, ok := track.Pattern(*pattern); !ok {
					return fmt.Errorf("no pattern %q in the track", *pattern)
				}
				model.Grid().SetPattern(*pattern)
			} else {
				model.Grid().SetRow(*row - 1)
			}
			if *gridOut {
				if err := renderer.Grid(os.Stdout, model); err != nil {
					return err
				}
			}
			if *arrangementOut {
				if err := renderer.Arrangement(os.Stdout, model); err != nil {
					return err
				}
			}
		}
		if *play {
			if err := playTrack(text, midiSender, prefs); err != nil {
				return fmt.Errorf("playing failed: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, "*.lig"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for lig files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	closeMIDI()
	os.Exit(retval)
}

// playTrack plays the whole playlist through the model, the broker and a
// MIDI player, the same way the editor does, and returns when the player
// stops or the user interrupts.
func playTrack(text string, out gomidi.Sender, prefs tracker.Preferences) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	broker := tracker.NewBroker()
	model := tracker.NewModel(broker, nil, broker.Player(), prefs, "")
	model.SetText(text)
	player := gomidi.NewPlayer(broker, out, time.Now)
	go player.Run(ctx)
	defer func() {
		tracker.TrySend(broker.ClosePlayer, struct{}{})
		tracker.TimeoutReceive(broker.FinishedPlayer, 3*time.Second)
	}()
	trackerClock, arrangementClock := prefs.Clocks(player.Transport())
	go trackerClock.Run(ctx, broker.TrackerClock)
	go arrangementClock.Run(ctx, broker.ArrangementClock)
	model.Play().Song().Do()
	printed := map[string]bool{}
	started := false
	ticker := time.NewTicker(max(prefs.Tracker.PollInterval, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			model.Play().Stop().Do()
			return nil
		case <-ticker.C:
		}
		model.Update()
		for _, a := range model.Alerts().Iterate {
			if a.Priority >= tracker.Error && !printed[a.Message] {
				printed[a.Message] = true
				log.Print(a.Message)
			}
		}
		if len(printed) > 0 && !model.Play().IsPlaying() {
			return fmt.Errorf("the player reported %d error(s)", len(printed))
		}
		if model.Play().IsPlaying() {
			started = true
		} else if started {
			return nil
		}
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Ligature command line tool. Input .lig tracks, checks, converts, prints or plays them.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
