package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"projecttracker/internal/export"
	"projecttracker/internal/model"
	"projecttracker/internal/report"
	"projecttracker/internal/session"
	"projecttracker/internal/store"
)

// ErrUsage wraps a malformed command line.
var ErrUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	auth  bool
	run   func(ctx context.Context, s *Shell, args []string, out io.Writer) error
}

// Shell is the line-oriented front end. Every store access goes through a
// command marked auth, which checks the gate first.
type Shell struct {
	env      *Env
	handlers map[Section]Handler
	commands map[string]command
	logger   *zap.Logger
}

func New(st *store.Store, gate *session.Gate, logger *zap.Logger) *Shell {
	s := &Shell{
		env: &Env{
			Store: st,
			State: &SessionState{Gate: gate},
		},
		handlers: defaultHandlers(),
		logger:   logger.Named("shell"),
	}
	s.commands = builtins()
	return s
}

func (s *Shell) State() *SessionState {
	return s.env.State
}

// Run reads commands from in until EOF, quit or ctx is done. Command errors
// are printed and the loop continues.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	s.prompt(out)
	for scanner.Scan() {
		quit, err := s.Execute(ctx, scanner.Text(), out)
		if err != nil {
			failure(out, err)
			s.logFailure(err)
		}
		if quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.prompt(out)
	}
	return scanner.Err()
}

// Execute runs one command line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string, out io.Writer) (bool, error) {
	args, err := tokenize(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case "quit", "exit":
		return true, nil
	}

	if cmd, ok := s.commands[name]; ok {
		if cmd.auth {
			if err := s.env.State.Gate.Require(); err != nil {
				return false, err
			}
		}
		return false, cmd.run(ctx, s, args, out)
	}

	if section, ok := ParseSection(strings.Join(append([]string{name}, args...), "_")); ok {
		return false, s.Render(ctx, section, out)
	}
	return false, fmt.Errorf("unknown command %q, try help", name)
}

// Render shows one section to an authenticated user.
func (s *Shell) Render(ctx context.Context, section Section, out io.Writer) error {
	if err := s.env.State.Gate.Require(); err != nil {
		return err
	}
	h, ok := s.handlers[section]
	if !ok {
		return fmt.Errorf("no handler for section %s", section)
	}
	return h.Render(ctx, s.env, out)
}

func (s *Shell) prompt(out io.Writer) {
	p := "tracker"
	if s.env.State.Project != "" {
		p += "[" + s.env.State.Project + "]"
	}
	fmt.Fprint(out, p+"> ")
}

func (s *Shell) logFailure(err error) {
	var (
		ve *model.ValidationError
		re *store.ReferenceError
		de *session.DuplicateUserError
		ie *session.InvalidCredentialsError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &re), errors.As(err, &de), errors.As(err, &ie),
		errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, ErrUsage):
		s.logger.Debug("Command rejected", zap.Error(err))
	default:
		s.logger.Error("Command failed", zap.Error(err))
	}
}

func usage(cmd string) error {
	return fmt.Errorf("%w: %s", ErrUsage, builtins()[cmd].usage)
}

func builtins() map[string]command {
	return map[string]command{
		"help": {
			usage: "help",
			help:  "list commands and sections",
			run:   runHelp,
		},
		"register": {
			usage: "register <username> <password>",
			help:  "create a login",
			run: func(ctx context.Context, s *Shell, args []string, out io.Writer) error {
				if len(args) != 2 {
					return usage("register")
				}
				if err := s.env.State.Gate.Register(ctx, args[0], args[1]); err != nil {
					return err
				}
				success(out, "registered %s", args[0])
				return nil
			},
		},
		"login": {
			usage: "login <username> <password>",
			help:  "authenticate",
			run: func(ctx context.Context, s *Shell, args []string, out io.Writer) error {
				if len(args) != 2 {
					return usage("login")
				}
				if err := s.env.State.Gate.Authenticate(ctx, args[0], args[1]); err != nil {
					return err
				}
				success(out, "logged in as %s", args[0])
				return nil
			},
		},
		"logout": {
			usage: "logout",
			help:  "end the session",
			run: func(ctx context.Context, s *Shell, _ []string, out io.Writer) error {
				s.env.State.Gate.Logout(ctx)
				s.env.State.Project = ""
				success(out, "logged out")
				return nil
			},
		},
		"whoami": {
			usage: "whoami",
			help:  "show the logged in user",
			run: func(_ context.Context, s *Shell, _ []string, out io.Writer) error {
				if u := s.env.State.Gate.CurrentUser(); u != "" {
					fmt.Fprintln(out, u)
				} else {
					fmt.Fprintln(out, dimStyle.Render("not logged in"))
				}
				return nil
			},
		},
		"projects": {
			usage: "projects",
			help:  "list project names",
			auth:  true,
			run: func(ctx context.Context, s *Shell, _ []string, out io.Writer) error {
				names, err := s.env.Store.ListProjectNames(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintln(out, dimStyle.Render("no projects"))
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
				return nil
			},
		},
		"use": {
			usage: "use [project]",
			help:  "select a project, or clear the selection",
			auth:  true,
			run:   runUse,
		},
		"add": {
			usage: "add <category> field=value ...",
			help:  "add a record; project_name defaults to the selected project",
			auth:  true,
			run:   runAdd,
		},
		"list": {
			usage: "list <category>",
			help:  "list records of a category",
			auth:  true,
			run: func(ctx context.Context, s *Shell, args []string, out io.Writer) error {
				if len(args) != 1 {
					return usage("list")
				}
				c, err := model.ParseCategory(args[0])
				if err != nil {
					return err
				}
				recs, err := scoped(ctx, s.env, c)
				if err != nil {
					return err
				}
				records(out, c, recs)
				return nil
			},
		},
		"fields": {
			usage: "fields <category>",
			help:  "show the fields a category accepts",
			run: func(_ context.Context, _ *Shell, args []string, out io.Writer) error {
				if len(args) != 1 {
					return usage("fields")
				}
				c, err := model.ParseCategory(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, strings.Join(model.Columns(c), " "))
				return nil
			},
		},
		"export": {
			usage: "export [category] <file>",
			help:  "write the full report, or one category, as CSV",
			auth:  true,
			run:   runExport,
		},
		"roi": {
			usage: "roi <investment> <cash flow,...>",
			help:  "compute ROI and IRR",
			auth:  true,
			run: func(_ context.Context, _ *Shell, args []string, out io.Writer) error {
				if len(args) < 2 {
					return usage("roi")
				}
				inv, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return &model.ValidationError{Field: "investment", Message: fmt.Sprintf("%q is not a number", args[0])}
				}
				flows, err := report.ParseCashFlows(strings.Join(args[1:], ","))
				if err != nil {
					return err
				}
				res, err := report.ROI(inv, flows)
				if err != nil {
					return err
				}
				success(out, "%s", res)
				return nil
			},
		},
		"show": {
			usage: "show <section>",
			help:  "render a section",
			auth:  true,
			run: func(ctx context.Context, s *Shell, args []string, out io.Writer) error {
				if len(args) == 0 {
					return usage("show")
				}
				section, ok := ParseSection(strings.Join(args, "_"))
				if !ok {
					return fmt.Errorf("unknown section %q", strings.Join(args, " "))
				}
				return s.Render(ctx, section, out)
			},
		},
	}
}

func runHelp(_ context.Context, s *Shell, _ []string, out io.Writer) error {
	names := make([]string, 0, len(s.commands))
	for n := range s.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	title(out, "Commands")
	for _, n := range names {
		fmt.Fprintf(out, "  %-36s %s\n", s.commands[n].usage, dimStyle.Render(s.commands[n].help))
	}
	fmt.Fprintf(out, "  %-36s %s\n", "quit", dimStyle.Render("leave the shell"))

	title(out, "Sections")
	sections := make([]string, 0, len(sectionNames))
	for _, sec := range Sections() {
		sections = append(sections, sec.String())
	}
	fmt.Fprintln(out, "  "+strings.Join(sections, " "))
	return nil
}

func runUse(ctx context.Context, s *Shell, args []string, out io.Writer) error {
	if len(args) == 0 {
		s.env.State.Project = ""
		success(out, "showing every project")
		return nil
	}
	name := strings.Join(args, " ")
	names, err := s.env.Store.ListProjectNames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			s.env.State.Project = name
			success(out, "using %s", name)
			return nil
		}
	}
	return &store.ReferenceError{Category: model.CategoryProject, ProjectName: name}
}

func runAdd(ctx context.Context, s *Shell, args []string, out io.Writer) error {
	if len(args) < 1 {
		return usage("add")
	}
	c, err := model.ParseCategory(args[0])
	if err != nil {
		return err
	}

	fields := make(map[string]string, len(args)-1)
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return &model.ValidationError{Field: kv, Message: "expected field=value"}
		}
		fields[k] = v
	}
	if _, set := fields["project_name"]; !set && c.ProjectScoped() && s.env.State.Project != "" {
		fields["project_name"] = s.env.State.Project
	}

	rec, err := model.Decode(c, fields)
	if err != nil {
		return err
	}
	id, err := s.env.Store.Add(ctx, rec)
	if err != nil {
		return err
	}
	success(out, "added %s #%d", c, id)
	return nil
}

func runExport(ctx context.Context, s *Shell, args []string, out io.Writer) (err error) {
	var (
		c    model.Category
		path string
	)
	switch len(args) {
	case 1:
		path = args[0]
	case 2:
		if c, err = model.ParseCategory(args[0]); err != nil {
			return err
		}
		path = args[1]
	default:
		return usage("export")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if c == "" {
		err = export.FullReport(ctx, s.env.Store, f)
	} else {
		err = export.Category(ctx, s.env.Store, c, f)
	}
	if err != nil {
		return err
	}
	success(out, "wrote %s", path)
	return nil
}

// tokenize splits on whitespace; double quotes group words and are dropped,
// so description="two words" is one argument.
func tokenize(line string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				out = append(out, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", ErrUsage)
	}
	if pending {
		out = append(out, cur.String())
	}
	return out, nil
}
