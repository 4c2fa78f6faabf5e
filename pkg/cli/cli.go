// Package cli is a small flag and help-page layer. It exists for two
// things the standard flag package does not give us: -W/-F prefix flags
// that collect their suffix, and a help page laid out against the real
// terminal width.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
}

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }

type Flag struct {
	Name      string
	Shorthand string
	Usage     string
	Value     Value
	ArgName   string // empty for booleans
}

// Toggle describes one entry of a prefix group for the help page, e.g. a
// single warning under the -W prefix.
type Toggle struct {
	Name    string
	Usage   string
	Default bool
}

type prefixGroup struct {
	Prefix  string
	Title   string
	Toggles []Toggle
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	prefixes   map[string]*Flag
	groups     []prefixGroup
	args       []string
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
		prefixes:   make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: &boolValue{p}})
}

func (f *FlagSet) String(p *string, name, shorthand, value, argName, usage string) {
	*p = value
	f.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: &stringValue{p}, ArgName: argName})
}

// Prefix registers a collecting flag: every -<prefix><suffix> argument
// appends suffix to p. The toggles only feed the help page.
func (f *FlagSet) Prefix(p *[]string, prefix, title, usage string, toggles []Toggle) {
	*p = []string{}
	fl := &Flag{Name: prefix, Usage: usage, Value: &listValue{p}}
	f.add(fl)
	f.prefixes[prefix] = fl
	f.groups = append(f.groups, prefixGroup{Prefix: prefix, Title: title, Toggles: toggles})
}

func (f *FlagSet) add(fl *Flag) {
	if _, ok := f.flags[fl.Name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", fl.Name))
	}
	f.flags[fl.Name] = fl
	if fl.Shorthand != "" {
		if _, ok := f.shorthands[fl.Shorthand]; ok {
			panic(fmt.Sprintf("shorthand redefined: %s", fl.Shorthand))
		}
		f.shorthands[fl.Shorthand] = fl
	}
}

func (f *FlagSet) Parse(arguments []string) error {
	f.args = nil
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		if arg == "--" {
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		}

		name := strings.TrimLeft(arg, "-")
		var inline string
		hasInline := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, inline, hasInline = name[:eq], name[eq+1:], true
		}

		fl := f.resolve(name)
		if fl == nil {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if _, isPrefix := f.prefixes[fl.Name]; isPrefix {
			fl.Value.Set(strings.TrimPrefix(name, fl.Name))
			continue
		}
		switch {
		case hasInline:
			if err := fl.Value.Set(inline); err != nil {
				return err
			}
		case fl.ArgName == "":
			if err := fl.Value.Set(""); err != nil {
				return err
			}
		default:
			if i+1 >= len(arguments) {
				return fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			if err := fl.Value.Set(arguments[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *FlagSet) resolve(name string) *Flag {
	if fl, ok := f.flags[name]; ok {
		return fl
	}
	if fl, ok := f.shorthands[name]; ok {
		return fl
	}
	for prefix, fl := range f.prefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return fl
		}
	}
	return nil
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information.")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", a.Name)
		return err
	}
	if help {
		a.writeHelp(os.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) writeHelp(w *os.File) {
	width := terminalWidth()
	var sb strings.Builder

	fmt.Fprintf(&sb, "Usage: %s %s\n", a.Name, a.Synopsis)
	if a.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrapText(a.Description, width-4) {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}

	var plain []*Flag
	leftWidth := 0
	for _, fl := range a.FlagSet.flags {
		if _, isPrefix := a.FlagSet.prefixes[fl.Name]; isPrefix {
			continue
		}
		plain = append(plain, fl)
		if n := len(flagLabel(fl)); n > leftWidth {
			leftWidth = n
		}
	}
	for _, g := range a.FlagSet.groups {
		for _, t := range g.Toggles {
			if n := len(g.Prefix + t.Name); n+5 > leftWidth {
				leftWidth = n + 5
			}
		}
	}

	sort.Slice(plain, func(i, j int) bool { return plain[i].Name < plain[j].Name })
	sb.WriteString("\nOptions\n")
	for _, fl := range plain {
		writeEntry(&sb, flagLabel(fl), fl.Usage, "", leftWidth, width)
	}

	for _, g := range a.FlagSet.groups {
		fmt.Fprintf(&sb, "\n%s (-%s<name>, -%sno-<name>)\n", g.Title, g.Prefix, g.Prefix)
		toggles := append([]Toggle(nil), g.Toggles...)
		sort.Slice(toggles, func(i, j int) bool { return toggles[i].Name < toggles[j].Name })
		for _, t := range toggles {
			mark := "|-|"
			if t.Default {
				mark = "|x|"
			}
			writeEntry(&sb, t.Name, t.Usage, mark, leftWidth, width)
		}
	}
	fmt.Fprint(w, sb.String())
}

func flagLabel(fl *Flag) string {
	var sb strings.Builder
	if fl.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", fl.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", fl.Name)
	if fl.ArgName != "" {
		fmt.Fprintf(&sb, " <%s>", fl.ArgName)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, label, usage, mark string, leftWidth, width int) {
	avail := width - leftWidth - 8
	if avail < 10 {
		avail = 10
	}
	lines := wrapText(usage, avail)
	if len(lines) == 0 {
		lines = []string{""}
	}
	if mark != "" {
		fmt.Fprintf(sb, "    %-*s %s %s\n", leftWidth, label, lines[0], mark)
	} else {
		fmt.Fprintf(sb, "    %-*s %s\n", leftWidth, label, lines[0])
	}
	for _, line := range lines[1:] {
		fmt.Fprintf(sb, "    %-*s %s\n", leftWidth, "", line)
	}
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 20 {
		return 80
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
