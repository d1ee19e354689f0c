package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/latticelang/evaluator/pkg/interpreter"
	"github.com/latticelang/evaluator/pkg/parser"
	"github.com/latticelang/evaluator/pkg/runtime"
)

// runFile evaluates a single source file and reports its result or fault.
func runFile(path string, seedConvenience bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	interp := interpreter.New()
	if seedConvenience {
		runtime.SeedConvenience(interp.GlobalEnvironment())
	}

	log.WithField("path", path).Debug("evaluating file")
	globals := map[string]runtime.Value{}
	awaitable := interp.Evaluate(parser.New(), globals, string(source))
	result, err := awaitable.Await()
	if err != nil {
		return err
	}

	log.WithField("result_kind", result.Kind().String()).Debug("evaluation finished")
	return nil
}

