package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	min "github.com/StartAutomating/PSMinifier"
	"github.com/StartAutomating/PSMinifier/ps"
	"github.com/djherbis/atime"
	humanize "github.com/dustin/go-humanize"
	"github.com/tdewolff/argp"
)

// Version is the current psminify version.
var Version = "built from source"

var extMap = map[string]string{
	"ps1":  min.MediatypeScript,
	"psm1": min.MediatypeScript,
	"json": min.MediatypeTreeJSON,
	"cbor": min.MediatypeTreeCBOR,
}

var (
	hidden             bool
	m                  *min.M
	cache              *Cache
	fingerprint        string
	matches            []string
	matchesRegexp      []*regexp.Regexp
	filters            []string
	filtersRegexp      []*regexp.Regexp
	recursive          bool
	quiet              bool
	verbose            int
	version            bool
	watch              bool
	gzip               bool
	preserve           []string
	preserveMode       bool
	preserveOwnership  bool
	preserveTimestamps bool
	mimetype           string
	summary            Summary
)

type Matches struct {
	matches *[]string
}

func (scanner Matches) Scan(s []string) (int, error) {
	n := 0
	for _, item := range s {
		if strings.HasPrefix(item, "-") {
			break
		}
		*scanner.matches = append(*scanner.matches, item)
		n++
	}
	return n, nil
}

func (typenamer Matches) TypeName() string {
	return "[]string"
}

type Includes struct {
	filters *[]string
}

func (scanner Includes) Scan(s []string) (int, error) {
	n := 0
	for _, item := range s {
		if strings.HasPrefix(item, "-") {
			break
		}
		*scanner.filters = append(*scanner.filters, "+"+item)
		n++
	}
	return n, nil
}

func (typenamer Includes) TypeName() string {
	return "[]string"
}

type Excludes struct {
	filters *[]string
}

func (scanner Excludes) Scan(s []string) (int, error) {
	n := 0
	for _, item := range s {
		if strings.HasPrefix(item, "-") {
			break
		}
		*scanner.filters = append(*scanner.filters, "-"+item)
		n++
	}
	return n, nil
}

func (typenamer Excludes) TypeName() string {
	return "[]string"
}

// Task is a minify task.
type Task struct {
	root string
	src  string
	dst  string
}

// NewTask returns a new Task. An empty output writes next to the input following the minified
// naming convention, "-" writes to stdout and an output directory mirrors the input tree.
func NewTask(root, input, output string) (Task, error) {
	if output == "-" || input == "" && output == "" {
		output = ""
	} else if output == "" {
		output = MinifiedName(input, gzip)
	} else if output == "." || output[len(output)-1] == os.PathSeparator {
		rel, err := filepath.Rel(root, input)
		if err != nil {
			return Task{}, err
		}
		output = filepath.Join(output, MinifiedName(rel, gzip))
	}
	return Task{root, input, output}, nil
}

// Summary sums the sizes of all minified files.
type Summary struct {
	mutex        sync.Mutex
	Files        int
	OriginalSize int64
	MinifiedSize int64
}

// Add adds the sizes of one file.
func (s *Summary) Add(original, minified int) {
	s.mutex.Lock()
	s.Files++
	s.OriginalSize += int64(original)
	s.MinifiedSize += int64(minified)
	s.mutex.Unlock()
}

// MinifiedPercent returns the minified size relative to the original size.
func (s *Summary) MinifiedPercent() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.OriginalSize == 0 {
		return 100.0
	}
	return 100.0 * float64(s.MinifiedSize) / float64(s.OriginalSize)
}

// Loggers.
var (
	Error   *log.Logger
	Warning *log.Logger
	Info    *log.Logger
)

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by encapsulating run()
	os.Exit(run())
}

func run() int {
	var inputs []string
	var output string
	var aliases string
	var parser string
	var cacheFile string
	var decode bool
	var listAliases bool

	psMinifier := ps.Minifier{}

	defaultPreserve := []string{"mode", "timestamps"}
	if supportsGetOwnership {
		defaultPreserve = []string{"mode", "ownership", "timestamps"}
	}

	f := argp.New("psminify")
	f.AddRest(&inputs, "inputs", "Input scripts, syntax trees or directories, leave blank to use stdin")
	f.AddOpt(&output, "o", "output", nil, "Output file or directory, - for stdout, by default next to the input as .min.ps1")
	f.AddOpt(&mimetype, "", "type", nil, "Filetype (eg. ps1, json or cbor), optional when specifying inputs")
	f.AddOpt(Matches{&matches}, "", "match", nil, "Filename matching pattern, only matching filenames are processed")
	f.AddOpt(Includes{&filters}, "", "include", nil, "Path inclusion pattern, includes paths previously excluded")
	f.AddOpt(Excludes{&filters}, "", "exclude", nil, "Path exclusion pattern, excludes paths from being processed")
	f.AddOpt(&recursive, "r", "recursive", false, "Recursively minify directories")
	f.AddOpt(&hidden, "a", "all", false, "Minify all files, including hidden files and files in hidden directories")
	f.AddOpt(&quiet, "q", "quiet", false, "Quiet mode to suppress all output")
	f.AddOpt(argp.Count{I: &verbose}, "v", "verbose", nil, "Verbose mode, set twice for more verbosity")
	f.AddOpt(&watch, "w", "watch", false, "Watch files and minify upon changes")
	f.AddOpt(&preserve, "p", "preserve", defaultPreserve, "Preserve options (mode, ownership, timestamps, all)")
	f.AddOpt(&cacheFile, "", "cache", nil, "Cache file, skips inputs that did not change since the last run")
	f.AddOpt(&decode, "", "decode", false, "Decode compressed scripts instead of minifying")
	f.AddOpt(&listAliases, "", "list-aliases", false, "List the aliases of the alias profile")
	f.AddOpt(&version, "", "version", false, "Version")

	f.AddOpt(&gzip, "", "gzip", false, "Compress the result into a self-decoding envelope")
	f.AddOpt(&psMinifier.DotSource, "", "dot-source", false, "Dot-source the result in the caller's scope")
	f.AddOpt(&psMinifier.Name, "", "name", nil, "Assign the result to a variable with this name")
	f.AddOpt(&psMinifier.Anonymous, "", "anonymous", false, "Do not assign the result to a variable")
	f.AddOpt(&psMinifier.SingleLine, "", "single-line", false, "Do not wrap the base64 lines of a compressed script")
	f.AddOpt(&psMinifier.FirstVariableName, "", "first-var", nil, "First generated variable name, a by default")
	f.AddOpt(&psMinifier.KeepVarNames, "", "keep-var-names", false, "Preserve original variable names")
	f.AddOpt(&psMinifier.KeepCommandNames, "", "keep-command-names", false, "Preserve original command names instead of their shortest alias")
	f.AddOpt(&psMinifier.MaxDepth, "", "max-depth", 0, "Maximum nesting depth of the syntax tree, 0 is the default of 1000")
	f.AddOpt(&aliases, "", "aliases", nil, "Alias profile (core, windows) or YAML alias file")
	f.AddOpt(&parser, "", "parser", nil, "PowerShell host command that parses scripts, by default "+ps.DefaultParserCommand)
	f.Parse()
	psMinifier.GZip = gzip

	if version {
		if !quiet {
			fmt.Printf("psminify %s\n", Version)
		}
		return 0
	}

	Error = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
	Info = log.New(io.Discard, "", 0)
	if !quiet {
		Error = log.New(os.Stderr, "ERROR: ", 0)
		if 0 < verbose {
			Warning = log.New(os.Stderr, "WARNING: ", 0)
		}
		if 1 < verbose {
			Info = log.New(os.Stderr, "INFO: ", 0)
		}
	}

	table, err := loadAliases(aliases)
	if err != nil {
		Error.Println(err)
		return 1
	}
	psMinifier.Aliases = table
	if listAliases {
		if !quiet {
			printAliases(table)
		}
		return 0
	}

	if psMinifier.SingleLine && !gzip {
		Error.Println("--single-line requires --gzip")
		return 1
	} else if psMinifier.Name != "" && psMinifier.Anonymous {
		Error.Println("--name cannot be used together with --anonymous")
		return 1
	}
	if parser != "" {
		psMinifier.Parser = &ps.Parser{Command: parser}
	}

	if len(inputs) == 1 && inputs[0] == "-" {
		inputs = inputs[:0] // stdin
	}
	useStdin := len(inputs) == 0

	if decode {
		return runDecode(inputs, output)
	}

	// compile matches and regexps
	if 0 < len(matches) {
		matchesRegexp = make([]*regexp.Regexp, len(matches))
		for i, pattern := range matches {
			if matchesRegexp[i], err = compilePattern(pattern); err != nil {
				Error.Println(err)
				return 1
			}
		}
	}
	if 0 < len(filters) {
		filtersRegexp = make([]*regexp.Regexp, len(filters))
		for i, pattern := range filters {
			if filtersRegexp[i], err = compilePattern(pattern[1:]); err != nil {
				Error.Println(err)
				return 1
			}
		}
	}

	// detect mimetype, mimetype=="" means we'll infer mimetype from file extensions
	if slash := strings.Index(mimetype, "/"); slash == -1 && 0 < len(mimetype) {
		var ok bool
		if mimetype, ok = extMap[strings.TrimPrefix(mimetype, ".")]; !ok {
			Error.Println("unknown filetype", mimetype)
			return 1
		}
	}

	if useStdin && watch {
		Error.Println("--watch doesn't work with stdin, specify input")
		return 1
	} else if useStdin && recursive {
		Error.Println("--recursive doesn't work with stdin, specify input")
		return 1
	} else if output == "-" && (watch || recursive) {
		Error.Println("--watch and --recursive don't work with stdout, specify output")
		return 1
	}
	if mimetype == "" && useStdin {
		mimetype = min.MediatypeScript
	}
	if mimetype == "" {
		if !recursive {
			okAll := true
			for _, input := range inputs {
				if !IsDir(input) && extMimetype(input) == "" {
					Error.Println("cannot infer filetype from extension in", input, ", set --type explicitly")
					okAll = false
				}
			}
			if !okAll {
				return 1
			}
		}
		Info.Println("infer filetype from file extensions")
	} else {
		Info.Println("use mimetype", mimetype)
	}
	if f.IsSet("preserve") && (useStdin || output == "-") {
		Error.Println("--preserve cannot be used together with stdin or stdout")
		return 1
	}
	for _, option := range preserve {
		switch option {
		case "all":
			preserveMode = true
			preserveOwnership = true
			preserveTimestamps = true
		case "mode":
			preserveMode = true
		case "ownership":
			preserveOwnership = true
		case "timestamps":
			preserveTimestamps = true
		}
	}
	if preserveOwnership && !supportsGetOwnership {
		Warning.Println(fmt.Errorf("preserve ownership not supported on platform"))
	}

	////////////////

	for i, input := range inputs {
		if input == "-" {
			Error.Println("cannot mix files and stdin as input")
			return 1
		}
		inputs[i] = filepath.Clean(input)
		if input[len(input)-1] == os.PathSeparator {
			inputs[i] += string(os.PathSeparator)
		}
	}

	// set output file or directory, empty means next to each input
	dirDst := false
	if output != "" && output != "-" {
		dirDst = IsDir(output)
		if !dirDst {
			if 1 < len(inputs) {
				Error.Printf("stat %v: no such file or directory\n", output)
				return 1
			} else if len(inputs) == 1 && IsDir(inputs[0]) {
				dirDst = true
			}
		}
		output = filepath.Clean(output)
		if dirDst {
			output += string(os.PathSeparator)
		}
	} else if output == "" && useStdin {
		output = "-"
	}
	if output == "-" {
		Info.Println("minify to stdout")
	} else if output == "" {
		Info.Println("minify next to inputs")
	} else if !dirDst {
		Info.Println("minify to output file", output)
	} else {
		Info.Println("minify to output directory", output)
	}

	var tasks []Task
	var roots []string
	if useStdin {
		Info.Println("minify from stdin")
		task, err := NewTask("", "", output)
		if err != nil {
			Error.Println(err)
			return 1
		}
		tasks = append(tasks, task)
		roots = append(roots, "")
	} else {
		tasks, roots, err = createTasks(NewFS(), inputs, output)
		if err != nil {
			Error.Println(err)
			return 1
		}
	}

	// make output directory
	if dirDst {
		if err := os.MkdirAll(output, 0777); err != nil {
			Error.Println(err)
			return 1
		}
	}

	if cacheFile != "" {
		if cache, err = OpenCache(cacheFile); err != nil {
			Error.Println(err)
			return 1
		}
		defer cache.Close()
		fingerprint = fmt.Sprintf("%s %v %v %q %v %v %q %v %v %d %q", Version, gzip, psMinifier.DotSource, psMinifier.Name, psMinifier.Anonymous, psMinifier.SingleLine, psMinifier.FirstVariableName, psMinifier.KeepVarNames, psMinifier.KeepCommandNames, psMinifier.MaxDepth, aliases)
	}

	////////////////

	jsonMinifier, cborMinifier, scriptMinifier := psMinifier, psMinifier, psMinifier
	jsonMinifier.Format = "json"
	cborMinifier.Format = "cbor"
	scriptMinifier.Format = "source"

	m = min.New()
	m.Add(min.MediatypeTreeJSON, &jsonMinifier)
	m.Add(min.MediatypeTreeCBOR, &cborMinifier)
	m.Add(min.MediatypeScript, &scriptMinifier)
	m.Add("application/x-powershell", &scriptMinifier)

	fails := 0
	start := time.Now()
	if !watch && (len(tasks) == 1 || 0 < verbose) {
		for _, task := range tasks {
			if ok := minify(task); !ok {
				fails++
			}
		}
	} else {
		numWorkers := runtime.NumCPU()
		if 0 < verbose {
			numWorkers = 1
		} else if numWorkers < 4 {
			numWorkers = 4
		}

		chanTasks := make(chan Task, 20)
		chanFails := make(chan int, numWorkers)
		for n := 0; n < numWorkers; n++ {
			go minifyWorker(chanTasks, chanFails)
		}

		if !watch {
			for _, task := range tasks {
				chanTasks <- task
			}
		} else {
			watcher, err := NewWatcher(recursive)
			if err != nil {
				Error.Println(err)
				return 1
			}
			defer watcher.Close()
			for _, filename := range inputs {
				if err := watcher.AddPath(filename); err != nil {
					Warning.Println(err)
				}
			}
			changes := watcher.Run()

			for _, task := range tasks {
				chanTasks <- task
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			for changes != nil {
				select {
				case <-c:
					watcher.Close()
				case file, ok := <-changes:
					if !ok {
						changes = nil
						break
					}
					file = filepath.Clean(file)
					if !fileMatches(file) {
						break
					}

					// find longest common path among roots
					root := ""
					for _, path := range roots {
						pathRel, err1 := filepath.Rel(path, file)
						rootRel, err2 := filepath.Rel(root, file)
						if err2 != nil || err1 == nil && len(pathRel) < len(rootRel) {
							root = path
						}
					}

					task, err := NewTask(root, file, output)
					if err != nil {
						Error.Println(err)
						return 1
					}
					chanTasks <- task
				}
			}
		}

		close(chanTasks)
		for n := 0; n < numWorkers; n++ {
			fails += <-chanFails
		}
	}

	if !watch {
		Info.Println("finished in", time.Since(start))
		if !quiet && 1 < summary.Files {
			fmt.Printf("%d files, %v to %v (%.1f%%)\n", summary.Files, humanize.Bytes(uint64(summary.OriginalSize)), humanize.Bytes(uint64(summary.MinifiedSize)), summary.MinifiedPercent())
		}
	}
	if 0 < fails {
		return 1
	}
	return 0
}

// loadAliases returns the alias table of a profile name or of a YAML alias file.
func loadAliases(name string) (*ps.AliasTable, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".json") {
		r, err := openInputFile(name)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		table, err := ps.LoadAliasTable(r)
		if err != nil {
			return nil, fmt.Errorf("load aliases %q: %w", name, err)
		}
		return table, nil
	}
	return ps.AliasProfile(name)
}

func printAliases(table *ps.AliasTable) {
	definitions := table.Aliases()
	n := 0
	var keys []string
	for k := range definitions {
		keys = append(keys, k)
		if n < len(k) {
			n = len(k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(k + strings.Repeat(" ", n-len(k)+2) + definitions[k])
	}
}

// runDecode extracts the scripts of compressed envelopes.
func runDecode(inputs []string, output string) int {
	if len(inputs) == 0 {
		inputs = []string{""}
	} else if 1 < len(inputs) && output != "" && output != "-" && !IsDir(output) {
		Error.Printf("stat %v: no such file or directory\n", output)
		return 1
	}

	fails := 0
	for _, input := range inputs {
		srcName := input
		if srcName == "" {
			srcName = "stdin"
		}
		r, err := openInputFile(input)
		if err != nil {
			Error.Println(err)
			fails++
			continue
		}
		b, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			Error.Println("cannot decode "+srcName+":", err)
			fails++
			continue
		}
		text, err := ps.Decode(string(b))
		if err != nil {
			Error.Println("cannot decode "+srcName+":", err)
			fails++
			continue
		}

		dst := output
		if dst != "" && dst != "-" && IsDir(dst) {
			dst = filepath.Join(dst, filepath.Base(input))
		}
		if dst == "" || dst == "-" {
			_, err = io.WriteString(os.Stdout, text)
		} else {
			_, err = ps.WriteFile(dst, text)
		}
		if err != nil {
			Error.Println(err)
			fails++
			continue
		}
		Info.Println("decode", srcName)
	}
	if 0 < fails {
		return 1
	}
	return 0
}

func minifyWorker(chanTasks <-chan Task, chanFails chan<- int) {
	fails := 0
	for task := range chanTasks {
		if ok := minify(task); !ok {
			fails++
		}
	}
	chanFails <- fails
}

// compilePattern compiles a glob pattern, or a regular expression when prefixed by ~
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if len(pattern) == 0 || pattern[0] != '~' {
		if strings.HasPrefix(pattern, `\~`) {
			pattern = pattern[1:]
		}
		pattern = regexp.QuoteMeta(pattern)
		pattern = strings.ReplaceAll(pattern, `\*\*`, `.*`)
		pattern = strings.ReplaceAll(pattern, `\*`, fmt.Sprintf(`[^%c]*`, filepath.Separator))
		pattern = strings.ReplaceAll(pattern, `\?`, fmt.Sprintf(`[^%c]?`, filepath.Separator))
		pattern = "^" + pattern + "$"
	} else {
		pattern = pattern[1:]
	}
	return regexp.Compile(pattern)
}

func fileFilter(filename string) bool {
	if IsMinified(filename) {
		return false
	}
	if 0 < len(matches) {
		match := false
		base := filepath.Base(filename)
		for _, re := range matchesRegexp {
			if re.MatchString(base) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	match := true
	for i, re := range filtersRegexp {
		if re.MatchString(filename) {
			match = filters[i][0] == '+'
		}
	}
	return match
}

func fileMatches(filename string) bool {
	if !fileFilter(filename) {
		return false
	} else if mimetype != "" {
		return true
	}
	return extMimetype(filename) != ""
}

func extMimetype(filename string) string {
	ext := filepath.Ext(filename)
	if 0 < len(ext) {
		ext = ext[1:]
	}
	return extMap[strings.ToLower(ext)]
}

func createTasks(fsys fs.FS, inputs []string, output string) ([]Task, []string, error) {
	tasks := []Task{}
	roots := []string{}
	for _, input := range inputs {
		root := filepath.Clean(filepath.Dir(input))
		input = filepath.Clean(input)

		info, err := fs.Stat(fsys, input)
		if err != nil {
			return nil, nil, err
		}

		if info.Mode().IsRegular() {
			if fileFilter(input) { // don't filter mimetype
				task, err := NewTask(root, input, output)
				if err != nil {
					return nil, nil, err
				}
				tasks = append(tasks, task)
			}
		} else if info.Mode().IsDir() {
			if !recursive {
				Warning.Println("--recursive not specified, omitting directory", input)
				continue
			}

			var walkFn func(string, fs.DirEntry, error) error
			walkFn = func(input string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				} else if d.Name() == "." || d.Name() == ".." {
					return nil
				} else if d.Name() == "" || !hidden && d.Name()[0] == '.' {
					if d.IsDir() {
						return fs.SkipDir
					}
					return nil
				}

				if d.Type()&os.ModeSymlink != 0 {
					// follow and dereference symlinks
					info, err := fs.Stat(fsys, input)
					if err != nil {
						return err
					}
					if info.IsDir() {
						return fs.WalkDir(fsys, input, walkFn)
					}
					d = fs.FileInfoToDirEntry(info)
				}

				if d.Type().IsRegular() && fileMatches(input) {
					task, err := NewTask(root, input, output)
					if err != nil {
						return err
					}
					tasks = append(tasks, task)
				}
				return nil
			}
			if err := fs.WalkDir(fsys, input, walkFn); err != nil {
				return nil, nil, err
			}
			roots = append(roots, root)
		} else {
			return nil, nil, fmt.Errorf("not a file or directory %s", input)
		}
	}
	return tasks, roots, nil
}

func minify(t Task) bool {
	fileMimetype := mimetype
	if fileMimetype == "" {
		if fileMimetype = extMimetype(t.src); fileMimetype == "" {
			Warning.Println("cannot infer filetype from extension in", t.src, ", set --type explicitly")
			return false
		}
	}

	srcName := t.src
	if srcName == "" {
		srcName = "stdin"
	}
	dstName := t.dst
	if dstName == "" {
		dstName = "stdout"
	} else if sameFile, _ := SameFile(t.src, t.dst); sameFile {
		Error.Println("cannot minify "+srcName+":", "output overwrites input")
		return false
	}

	fr, err := openInputFile(t.src)
	if err != nil {
		Error.Println(err)
		return false
	}
	b, err := io.ReadAll(fr)
	fr.Close()
	if err != nil {
		Error.Println("cannot minify "+srcName+":", err)
		return false
	}

	var key []byte
	if cache != nil {
		key = cache.Key(b, fingerprint)
		if cache.Fresh(t.dst, key) {
			Info.Println("unchanged", srcName)
			return true
		}
	}

	w := bytes.NewBuffer(make([]byte, 0, len(b)))
	startTime := time.Now()
	if err = m.Minify(fileMimetype, w, bytes.NewReader(b)); err != nil {
		Error.Println("cannot minify "+srcName+":", err)
		return false
	}

	rLen, wLen := len(b), w.Len()
	if t.dst == "" {
		_, err = io.Copy(os.Stdout, w)
	} else {
		_, err = ps.WriteFile(t.dst, w.String())
	}
	if err != nil {
		Error.Println(err)
		return false
	}
	summary.Add(rLen, wLen)

	if !quiet {
		dur := time.Since(startTime)
		speed := "Inf MB"
		if 0 < dur {
			speed = humanize.Bytes(uint64(float64(rLen) / dur.Seconds()))
		}
		ratio := 1.0
		if 0 < rLen {
			ratio = float64(wLen) / float64(rLen)
		}

		stats := fmt.Sprintf("(%9v, %6v, %6v, %5.1f%%, %6v/s)", dur, humanize.Bytes(uint64(rLen)), humanize.Bytes(uint64(wLen)), ratio*100, speed)
		if t.dst == "" {
			fmt.Fprintln(os.Stderr, stats, "-", srcName, "to", dstName)
		} else {
			fmt.Println(stats, "-", srcName, "to", dstName)
		}
	}

	preserveAttributes(t.src, t.dst)
	if cache != nil {
		if err := cache.Put(t.dst, key); err != nil {
			Warning.Println(err)
		}
	}
	return true
}

func preserveAttributes(src, dst string) {
	if src == "" || dst == "" {
		return
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		Warning.Println(err)
		return
	}

	if preserveMode {
		err = os.Chmod(dst, srcInfo.Mode().Perm())
		if err != nil {
			Warning.Println(err)
		}
	}
	if preserveOwnership {
		if uid, gid, ok := getOwnership(srcInfo); ok {
			err = os.Chown(dst, uid, gid)
			if err != nil {
				Warning.Println(err)
			}
		}
	}
	if preserveTimestamps {
		err = os.Chtimes(dst, atime.Get(srcInfo), srcInfo.ModTime())
		if err != nil {
			Warning.Println(err)
		}
	}
}
