package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid argument")
)

type command struct {
	usage string
	args  int
	run   func(s *Session, args []string) (string, error)
}

var commands = map[string]command{
	"insert": {
		usage: "insert <int>, add the key",
		args:  1,
		run: func(s *Session, args []string) (string, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return "", err
			}
			if !s.set.Insert(key) {
				return fmt.Sprintf("%d already exists", key), nil
			}
			return fmt.Sprintf("inserted %d", key), nil
		},
	},
	"delete": {
		usage: "delete <int>, remove the key",
		args:  1,
		run: func(s *Session, args []string) (string, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return "", err
			}
			if !s.set.Delete(key) {
				return fmt.Sprintf("%d not found", key), nil
			}
			return fmt.Sprintf("deleted %d", key), nil
		},
	},
	"search": {
		usage: "search <int>, report whether the key is present",
		args:  1,
		run: func(s *Session, args []string) (string, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return "", err
			}
			return strconv.FormatBool(s.set.Search(key)), nil
		},
	},
	"height": {
		usage: "height, the count of nodes on the longest path",
		run: func(s *Session, _ []string) (string, error) {
			return strconv.Itoa(s.set.Height()), nil
		},
	},
	"num_leaves": {
		usage: "num_leaves, the count of all nodes",
		run: func(s *Session, _ []string) (string, error) {
			return strconv.FormatInt(s.set.CountLeaves(), 10), nil
		},
	},
	"is_empty": {
		usage: "is_empty, report whether the tree is empty",
		run: func(s *Session, _ []string) (string, error) {
			return strconv.FormatBool(s.set.IsEmpty()), nil
		},
	},
	"inorder": {
		usage: "inorder, the keys in order",
		run: func(s *Session, _ []string) (string, error) {
			keys := make([]string, 0, s.set.Len())
			for key := range s.set.All() {
				keys = append(keys, strconv.FormatInt(key, 10))
			}
			return strings.Join(keys, " "), nil
		},
	},
	"min": {
		usage: "min, the first key in order",
		run: func(s *Session, _ []string) (string, error) {
			key, ok := s.set.Min()
			if !ok {
				return "empty", nil
			}
			return strconv.FormatInt(key, 10), nil
		},
	},
	"max": {
		usage: "max, the last key in order",
		run: func(s *Session, _ []string) (string, error) {
			key, ok := s.set.Max()
			if !ok {
				return "empty", nil
			}
			return strconv.FormatInt(key, 10), nil
		},
	},
	"print": {
		usage: "print, draw the tree",
		run: func(s *Session, _ []string) (string, error) {
			if s.set.IsEmpty() {
				return "(empty)", nil
			}
			return strings.TrimSuffix(s.set.PrettyPrint(), "\n"), nil
		},
	},
	"validate": {
		usage: "validate, check the balancing invariants",
		run: func(s *Session, _ []string) (string, error) {
			if err := tree.Validate[int64](s.set); err != nil {
				s.logger.Error(err, "[repl] tree invariants violated",
					zap.String("policy", s.set.Policy().String()),
				)
				return "", err
			}
			return "ok", nil
		},
	},
}

func init() {
	commands["help"] = command{
		usage: "help, list the commands",
		run: func(_ *Session, _ []string) (string, error) {
			names := make([]string, 0, len(commands))
			for name := range commands {
				names = append(names, name)
			}
			slices.Sort(names)
			lines := make([]string, 0, len(names)+1)
			for _, name := range names {
				lines = append(lines, "  "+commands[name].usage)
			}
			lines = append(lines, "  close, quit")
			return strings.Join(lines, "\n"), nil
		},
	}
}

func parseKey(arg string) (int64, error) {
	key, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer key", ErrInvalidArgument, arg)
	}
	return key, nil
}

const (
	closeCommand = "close"
	quitCommand  = "quit"
)

// Session reads one command per line and applies it to the tree.
// Malformed lines are reported to the output and the loop goes on.
type Session struct {
	set    tree.OrderedSet[int64]
	in     io.Reader
	out    io.Writer
	logger xlog.XLogger
	prompt string
}

type SessionOption func(*Session)

func WithSessionLogger(logger xlog.XLogger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSessionPrompt prints the prompt before reading each line.
func WithSessionPrompt(prompt string) SessionOption {
	return func(s *Session) {
		s.prompt = prompt
	}
}

func NewSession(set tree.OrderedSet[int64], in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		set: set,
		in:  in,
		out: out,
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	if s.logger == nil {
		s.logger = xlog.NewXLogger(
			xlog.WithXLoggerStdErrWriter(),
			xlog.WithXLoggerLevel(xlog.LogLevelError),
		)
	}
	return s
}

// Exec applies a single line. It returns true if the line closes
// the session. Blank lines are ignored.
func (s *Session) Exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == closeCommand || name == quitCommand {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %q, try help", ErrUnknownCommand, name)
	}
	if len(args) != cmd.args {
		return false, fmt.Errorf("%w: %s expects %d argument(s), usage: %s",
			ErrInvalidArgument, name, cmd.args, cmd.usage)
	}
	res, err := cmd.run(s, args)
	if err != nil {
		return false, err
	}
	s.println(res)
	return false, nil
}

func (s *Session) println(msg string) {
	_, _ = io.WriteString(s.out, msg)
	_, _ = io.WriteString(s.out, "\n")
}

// Run loops until close, the end of the input or the context is done.
func (s *Session) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for {
		if s.prompt != "" {
			_, _ = io.WriteString(s.out, s.prompt)
		}
		if !scanner.Scan() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		closed, err := s.Exec(line)
		if err != nil {
			s.println("error: " + err.Error())
			s.logger.Warn("[repl] command rejected",
				zap.String("line", line),
				zap.Error(err),
			)
			continue
		}
		if closed {
			return nil
		}
	}
	return scanner.Err()
}
