package vmrun

import "github.com/classvm/classvm/pkg/loader"

// object is a minimal heap instance: a class tag plus an instance-field
// table. spec.md's Data Model (§3) has no Object/heap entry of its own —
// the reference toolkit's user-visible state lives in static fields and the
// native PrintStream/System surface — so this is a small supplement letting
// `new`/getfield/putfield behave rather than error on any class beyond the
// native table, without taking on a general GC'd object model (a Non-goal).
type object struct {
	class  *loader.Class
	fields map[instanceFieldKey]Value
}

type instanceFieldKey struct {
	name, descriptor string
}

func newObject(cls *loader.Class) *object {
	return &object{class: cls, fields: make(map[instanceFieldKey]Value)}
}

func (o *object) get(name, descriptor string) Value {
	return o.fields[instanceFieldKey{name, descriptor}]
}

func (o *object) set(name, descriptor string, v Value) {
	o.fields[instanceFieldKey{name, descriptor}] = v
}
