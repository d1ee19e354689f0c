package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/latticelang/evaluator/internal/cliconfig"
	"github.com/latticelang/evaluator/pkg/interpreter"
	"github.com/latticelang/evaluator/pkg/parser"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// runREPL reads one line of source at a time, evaluating each against a
// globals map shared across the whole session (spec.md §6: "mirrors every
// top-level definition back into globals", which is how later lines see
// earlier ones' bindings). History persists per spec.md §6's JSON history
// file contract.
func runREPL(cfg cliconfig.Config, seedConvenience bool) error {
	interp := interpreter.New()
	if seedConvenience {
		runtime.SeedConvenience(interp.GlobalEnvironment())
	}
	globals := map[string]runtime.Value{}
	p := parser.New()

	fmt.Fprintln(os.Stdout, "evaluator REPL — Ctrl-D to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				return errors.Wrap(err, "read input")
			}
			fmt.Fprintln(os.Stdout)
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := cliconfig.AppendHistory(line, cfg.HistoryCap); err != nil {
			log.WithError(err).Warn("failed to persist history")
		}

		awaitable := interp.Evaluate(p, globals, line)
		result, err := awaitable.Await()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Fprintln(os.Stdout, describeResult(result))
	}
}

func describeResult(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return "undefined"
	case runtime.NullValue:
		return "null"
	case runtime.BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case runtime.StringValue:
		return val.Val
	case runtime.NumberValue:
		return fmt.Sprintf("%g", val.Val)
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}
