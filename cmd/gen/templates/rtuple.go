package templates

import (
	"bytes"
	"strings"
	"text/template"
)

const rtupleFileTmpl = `package sp

import (
	"github.com/sacrt/psac/crs"
	"github.com/sacrt/psac/mod"
)

// RTuple1..RTuple{{.MaxArity}} capture a fixed-arity tuple of Mod pointers known at
// trace-construction time: no heap allocation beyond the node itself, and
// the same subscriptions for the node's entire lifetime (no differential
// resubscription, unlike RScope). The arity-suffixed family mirrors
// rocket/signals.go's Computed1..Computed8 shape, generated here by
// cmd/gen rather than hand-maintained per arity.
{{range .Arities}}
{{.}}{{end}}`

type rtupleData struct {
	MaxArity int
	Arities  []string
}

// RTupleGen renders sp/rtuple_gen.go for arities 1..maxArity, the
// self-adjusting-computation analogue of cmd/codegen's RocketGen/DumbdumbGen:
// one repeating generic-arity shape, generated instead of hand-duplicated.
func RTupleGen(maxArity int) (string, error) {
	data := rtupleData{MaxArity: maxArity}
	for arity := 1; arity <= maxArity; arity++ {
		data.Arities = append(data.Arities, renderArity(arity))
	}

	tmpl, err := template.New("rtuple_gen").Parse(rtupleFileTmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const rtupleStructTmpl = `
type RTuple{{.Arity}}[{{.TypeParams}}] struct {
	core *Core
	key  uint64
{{range .Fields}}	{{.}}
{{end}}	fn   func(cur *Cursor, {{.FnArgs}})
}

func NewRTuple{{.Arity}}[{{.TypeParams}}](cur *Cursor, {{.CtorArgs}}, fn func(cur *Cursor, {{.FnArgs}})) *RTuple{{.Arity}}[{{.TypeParamNames}}] {
	r := &RTuple{{.Arity}}[{{.TypeParamNames}}]{ {{.FieldInit}}, fn: fn}
	r.core = cur.OpenOp(KindR)
	r.core.Exec = r
	r.key = crs.HashPointer(r)
{{range .Subscribes}}	{{.}}
{{end}}	r.Execute(EnterScope(r.core))
	return r
}

func (r *RTuple{{.Arity}}[{{.TypeParamNames}}]) SetModified() {
	r.core.PendingUpdate.Store(true)
	MarkDirty(r.core)
}

func (r *RTuple{{.Arity}}[{{.TypeParamNames}}]) Execute(cur *Cursor) {
	r.fn(cur, {{.ValueArgs}})
}

func (r *RTuple{{.Arity}}[{{.TypeParamNames}}]) Unsubscribe() {
{{range .Unsubscribes}}	{{.}}
{{end}}}
`

func renderArity(arity int) string {
	letters := make([]string, arity)
	fieldNames := make([]string, arity)
	for i := 0; i < arity; i++ {
		letters[i] = typeParamLetter(i)
		fieldNames[i] = strings.ToLower(letters[i])
	}

	typeParams := make([]string, arity)
	fields := make([]string, arity)
	ctorArgs := make([]string, arity)
	subscribes := make([]string, arity)
	unsubscribes := make([]string, arity)
	fieldInit := make([]string, arity)
	fnArgs := make([]string, arity)
	valueArgs := make([]string, arity)
	for i := 0; i < arity; i++ {
		typeParams[i] = letters[i] + " comparable"
		fields[i] = fieldNames[i] + " *mod.Mod[" + letters[i] + "]"
		ctorArgs[i] = fieldNames[i] + " *mod.Mod[" + letters[i] + "]"
		subscribes[i] = fieldNames[i] + ".AddReader(r.key, r)"
		unsubscribes[i] = "r." + fieldNames[i] + ".RemoveReader(r.key, r)"
		fieldInit[i] = fieldNames[i] + ": " + fieldNames[i]
		fnArgs[i] = fieldNames[i] + " " + letters[i]
		valueArgs[i] = "r." + fieldNames[i] + ".Value()"
	}

	tmpl := template.Must(template.New("rtuple_struct").Parse(rtupleStructTmpl))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, struct {
		Arity          int
		TypeParams     string
		TypeParamNames string
		Fields         []string
		CtorArgs       string
		Subscribes     []string
		Unsubscribes   []string
		FieldInit      string
		FnArgs         string
		ValueArgs      string
	}{
		Arity:          arity,
		TypeParams:     strings.Join(typeParams, ", "),
		TypeParamNames: strings.Join(letters, ", "),
		Fields:         fields,
		CtorArgs:       strings.Join(ctorArgs, ", "),
		Subscribes:     subscribes,
		Unsubscribes:   unsubscribes,
		FieldInit:      strings.Join(fieldInit, ", "),
		FnArgs:         strings.Join(fnArgs, ", "),
		ValueArgs:      strings.Join(valueArgs, ", "),
	})
	return buf.String()
}
