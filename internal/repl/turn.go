package repl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kr/pretty"

	"ember/internal/bytecode"
	"ember/internal/codegen"
	"ember/internal/frontend"
	"ember/internal/jit"
	"ember/internal/logging"
	"ember/internal/vm"
)

// Controller compiles and runs one input per turn against the live
// session. The turn counter names the synthetic modules and result
// globals; it advances on every executed input, successful or not.
type Controller struct {
	frontend  *frontend.Frontend
	compiler  *codegen.Compiler
	session   *jit.Session
	registry  *Registry
	validator *Validator
	cacheDir  string
	turn      int
}

// TurnResult is what one executed input produced.
type TurnResult struct {
	Result     string // synthesized result global, "" when nothing was captured
	ResultType frontend.Type
	Value      vm.Value
	HasValue   bool
	Skipped    []error // declarations rejected by the redeclaration rules
}

func NewController(session *jit.Session, playground bool, cacheDir string) *Controller {
	registry := NewRegistry()
	return &Controller{
		frontend:  frontend.New(),
		compiler:  codegen.New(),
		session:   session,
		registry:  registry,
		validator: NewValidator(registry, playground),
		cacheDir:  cacheDir,
		turn:      1,
	}
}

// Turn returns the number the next input will run as.
func (c *Controller) Turn() int {
	return c.turn
}

// Session exposes the linked session for inspection commands.
func (c *Controller) Session() *jit.Session {
	return c.session
}

// ExecuteLine runs one turn: parse and check against the registry, shape
// into declaration units, validate each unit, lower and link the accepted
// ones, then invoke the entry wrapper and read back the captured result.
//
// Rejected declarations are skipped and reported through TurnResult; the
// rest of the turn proceeds. A link or runtime failure aborts the turn but
// leaves already-linked units in place.
func (c *Controller) ExecuteLine(input string) (*TurnResult, error) {
	turn := c.turn
	c.turn++
	module := fmt.Sprintf("__repl_%d", turn)

	checked, errs := c.frontend.ParseAndCheck(input, module, c.registry)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	shaped := Shape(checked, turn)
	if logging.ShouldLog(logging.AreaAST, logging.PriorityInfo) {
		logging.Log(logging.AreaAST, "AST after modification:\n"+pretty.Sprint(shaped.Decls))
	}
	result := &TurnResult{}

	for _, d := range shaped.Decls {
		if err := c.validator.Validate(d); err != nil {
			result.Skipped = append(result.Skipped, err)
			shaped.DropInit(d)
			continue
		}
		unit, err := c.compiler.Lower(d, checked)
		if err != nil {
			return result, err
		}
		if err := c.session.AddUnit(unit); err != nil {
			return result, err
		}
		c.registry.Register(d, frontend.Mangle(d), shaped.Module)
		c.cacheUnit(unit)
	}

	if shaped.Entry != "" {
		if _, err := c.session.Invoke(shaped.Entry); err != nil {
			return result, err
		}
	}

	if shaped.Result != "" {
		if v, ok := c.session.GlobalValue(shaped.Result); ok {
			result.Result = shaped.Result
			result.ResultType = shaped.ResultType
			result.Value = v
			result.HasValue = true
		}
	}
	return result, nil
}

// cacheUnit writes a unit's disassembly listing into the module cache
// directory. The cache is a debugging aid; failures only warn.
func (c *Controller) cacheUnit(unit *codegen.ExecutableUnit) {
	if c.cacheDir == "" {
		return
	}
	var listing string
	for _, def := range unit.Symbols {
		if def.Fn != nil {
			listing += bytecode.Disassemble(def.Name, def.Fn.Chunk)
		}
	}
	if listing == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		logging.Warn(logging.AreaJIT, "module cache: "+err.Error())
		return
	}
	path := filepath.Join(c.cacheDir, unit.Module+".embc")
	if err := os.WriteFile(path, []byte(listing), 0o644); err != nil {
		logging.Warn(logging.AreaJIT, "module cache: "+err.Error())
	}
}
