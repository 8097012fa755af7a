package jit

import (
	"ember/internal/bytecode"
	"ember/internal/codegen"
	"ember/internal/logging"
)

// RewriteCalls redirects every call site in unit through the indirection
// table. The lowering compiler emits direct calls; here each one is flipped
// to an indirect call and its target constant replaced with the target's
// slot cell. A slot is allocated on first sight of a symbol, so a call to a
// function that links later in the same turn lands on a cell the defining
// unit will populate.
func RewriteCalls(unit *codegen.ExecutableUnit, table *IndirectionTable) {
	for _, site := range unit.CallSites {
		slot := table.Ensure(site.Target)
		site.Fn.Chunk.Code[site.Offset] = byte(bytecode.OpCallIndirect)
		site.Fn.Chunk.Constants[site.ConstIndex] = slot
		if logging.ShouldLog(logging.AreaJIT, logging.PriorityInfo) {
			logging.Log(logging.AreaJIT,
				"rewrote call to "+site.Target+" in "+site.Fn.Name)
		}
	}
}
