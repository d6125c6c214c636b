// Package script evaluates scene descriptions written in a small Lisp.
//
// A script builds a scene by calling builtins such as sphere, box and light;
// see registerBuiltins for the full vocabulary. Each evaluation runs in a
// fresh zygomys sandbox, so scripts cannot touch the filesystem and never
// see state from a previous run.
package script

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// EvalTimeout bounds an evaluation whose context carries no deadline.
const EvalTimeout = 5 * time.Second

// EvalError is a parse or runtime error in a script.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// CameraSpec is the viewpoint requested by a script's camera call. Nil
// fields were not given and keep the viewer's framing.
type CameraSpec struct {
	Eye    *math3d.Vec3
	Target *math3d.Vec3
	FOV    float64 // degrees, 0 for the viewer default
}

// Result is what a script produced.
type Result struct {
	Scene  *scene.Scene
	Camera *CameraSpec // nil when the script set no camera
}

type evalResult struct {
	res *Result
	err error
}

// Eval runs source and returns the scene it built. Script errors are
// returned as *EvalError; cancellation and timeouts wrap the context error.
func Eval(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate script: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, EvalTimeout)
		defer cancel()
	}

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		res, err := evaluate(source)
		ch <- evalResult{res: res, err: err}
	}()

	// A timed out interpreter keeps running in its goroutine; its result is
	// dropped into the buffered channel and discarded.
	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("evaluate script: %w", ctx.Err())
	}
}

func evaluate(source string) (*Result, error) {
	b := &builder{scene: scene.New()}
	if strings.TrimSpace(source) == "" {
		return b.result(), nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocess(source)); err != nil {
		return nil, parseError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseError(err)
	}
	return b.result(), nil
}

var (
	lineLong  = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	lineShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
	lineTail  = regexp.MustCompile(`(?is)^(.*?)\s*(?:in \S+ )?(?:at|on) line (\d+)`)
)

// parseError extracts the line number zygomys embeds in its messages.
func parseError(err error) *EvalError {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee
	}
	msg := strings.TrimSpace(err.Error())

	for _, re := range []*regexp.Regexp{lineLong, lineShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return &EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	if m := lineTail.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[2])
		return &EvalError{Line: line, Message: strings.TrimSpace(m[1])}
	}
	return &EvalError{Message: msg}
}
