// Package disasm renders a decoded class file as human-readable text: the
// class declaration, its fields and methods, bytecode listings, and
// line-number/local-variable tables — the external "disassembly
// pretty-printing" collaborator spec.md §1 calls out of the core's scope,
// implemented here so cmd/javap is actually runnable (SPEC_FULL.md §5).
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/classvm/classvm/pkg/classfile"
)

// Options selects which sections Print renders, mirroring the disassembler
// CLI surface spec.md §6 defines: -c emits code, -l emits line/local
// tables, -p includes private members, -s prints descriptors alongside
// signatures, -v is verbose (implies -c -l -s plus a constant-pool dump).
type Options struct {
	Code        bool
	Tables      bool
	Private     bool
	Descriptors bool
	Verbose     bool
}

func (o Options) normalize() Options {
	if o.Verbose {
		o.Code, o.Tables, o.Descriptors = true, true, true
	}
	return o
}

// Print writes cf's disassembly to w. name is the path or class name the
// caller read cf from, echoed in the banner the way javap identifies which
// file a listing belongs to.
func Print(w io.Writer, name string, cf *classfile.ClassFile, opt Options) error {
	opt = opt.normalize()

	className, err := cf.ClassName()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	kind := "class"
	if cf.IsInterface() {
		kind = "interface"
	}
	fmt.Fprintf(w, "Compiled from %q\n", name)
	fmt.Fprintf(w, "%s%s %s", classModifiers(cf.AccessFlags), kind, className)
	if superName, _ := cf.SuperClassName(); superName != "" && !cf.IsInterface() {
		fmt.Fprintf(w, " extends %s", superName)
	}
	if names, err := cf.InterfaceNames(); err == nil && len(names) > 0 {
		fmt.Fprintf(w, " implements %s", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "\n  minor version: %d\n  major version: %d\n", cf.MinorVersion, cf.MajorVersion)

	if opt.Verbose {
		PrintConstantPool(w, cf.ConstantPool)
	}

	fmt.Fprintln(w, "{")
	for i := range cf.Fields {
		printField(w, &cf.Fields[i], opt)
	}
	for i := range cf.Methods {
		printMethod(w, &cf.Methods[i], cf.ConstantPool, opt)
	}
	fmt.Fprintln(w, "}")
	return nil
}

// PrintConstantPool walks the pool in index order and prints one line per
// entry, the constant-pool dump javap.c's javap() never implements (it
// ships as an empty stub) but class.h's tagged CONSTANT_*_info layout
// names every entry kind for (SPEC_FULL.md §4).
func PrintConstantPool(w io.Writer, pool classfile.Pool) {
	fmt.Fprintln(w, "Constant pool:")
	for i := 1; i < len(pool); i++ {
		idx := uint16(i)
		if _, isUntagged := pool[i].(classfile.UntaggedInfo); isUntagged {
			continue
		}
		desc, ok := describeConstant(pool, idx)
		if !ok {
			desc = "?"
		}
		fmt.Fprintf(w, "  #%d = %s\n", idx, desc)
	}
}

func printField(w io.Writer, f *classfile.FieldInfo, opt Options) {
	if !opt.Private && f.AccessFlags&classfile.AccPublic == 0 && f.AccessFlags&classfile.AccProtected == 0 {
		return
	}
	fmt.Fprintf(w, "  %s%s %s;\n", memberModifiers(f.AccessFlags), fieldTypeName(f.Descriptor), f.Name)
	if opt.Descriptors {
		fmt.Fprintf(w, "    descriptor: %s\n", f.Descriptor)
	}
}

func printMethod(w io.Writer, m *classfile.MethodInfo, pool classfile.Pool, opt Options) {
	if !opt.Private && m.AccessFlags&classfile.AccPublic == 0 && m.AccessFlags&classfile.AccProtected == 0 {
		return
	}
	fmt.Fprintf(w, "  %s%s %s(%s)%s;\n",
		memberModifiers(m.AccessFlags), returnTypeName(m.Descriptor), m.Name, paramTypeNames(m.Descriptor), nativeSuffix(m))
	if opt.Descriptors {
		fmt.Fprintf(w, "    descriptor: %s\n", m.Descriptor)
	}
	if opt.Code && m.Code != nil {
		printCode(w, m.Code, pool, opt)
	}
}

func nativeSuffix(m *classfile.MethodInfo) string {
	if m.IsNative() {
		return " /* native */"
	}
	if m.IsAbstract() {
		return " /* abstract */"
	}
	return ""
}

func printCode(w io.Writer, code *classfile.CodeAttr, pool classfile.Pool, opt Options) {
	fmt.Fprintf(w, "    Code:\n      stack=%d, locals=%d\n", code.MaxStack, code.MaxLocals)
	for _, ins := range decodeInstructions(code.Code, pool) {
		if ins.operands == "" {
			fmt.Fprintf(w, "      %4d: %s\n", ins.pc, ins.mnemonic)
		} else {
			fmt.Fprintf(w, "      %4d: %-15s %s\n", ins.pc, ins.mnemonic, ins.operands)
		}
	}
	for _, h := range code.ExceptionTable {
		fmt.Fprintf(w, "      exception: from %d to %d target %d (type #%d)\n", h.StartPC, h.EndPC, h.HandlerPC, h.CatchType)
	}

	if !opt.Tables {
		return
	}
	if attr := classfile.FindAttribute(code.Attributes, "LineNumberTable"); attr != nil {
		lnt := attr.(classfile.LineNumberTableAttr)
		fmt.Fprintln(w, "      LineNumberTable:")
		for _, e := range lnt.Entries {
			fmt.Fprintf(w, "        line %d: %d\n", e.LineNumber, e.StartPC)
		}
	}
	if attr := classfile.FindAttribute(code.Attributes, "LocalVariableTable"); attr != nil {
		lvt := attr.(classfile.LocalVariableTableAttr)
		fmt.Fprintln(w, "      LocalVariableTable:")
		for _, e := range lvt.Entries {
			name, _ := classfile.GetUtf8(pool, e.NameIndex)
			descriptor, _ := classfile.GetUtf8(pool, e.DescriptorIndex)
			fmt.Fprintf(w, "        start %d length %d slot %d: %s %s\n",
				e.StartPC, e.Length, e.Index, name, descriptor)
		}
	}
}

func classModifiers(flags uint16) string {
	var mods []string
	if flags&classfile.AccPublic != 0 {
		mods = append(mods, "public")
	}
	if flags&classfile.AccFinal != 0 {
		mods = append(mods, "final")
	}
	if flags&classfile.AccAbstract != 0 {
		mods = append(mods, "abstract")
	}
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}

func memberModifiers(flags uint16) string {
	var mods []string
	switch {
	case flags&classfile.AccPublic != 0:
		mods = append(mods, "public")
	case flags&classfile.AccProtected != 0:
		mods = append(mods, "protected")
	case flags&classfile.AccPrivate != 0:
		mods = append(mods, "private")
	}
	if flags&classfile.AccStatic != 0 {
		mods = append(mods, "static")
	}
	if flags&classfile.AccFinal != 0 {
		mods = append(mods, "final")
	}
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}
