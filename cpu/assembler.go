// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < 0 {
		value = uint32(0xffffffff + (v64 + 1))
	} else {
		value = uint32(v64)
	}

	if invert {
		value = ^value
	}

	return
}

// valueIn parses a word as a value of at most bits wide. Negative values
// are accepted in two's complement form.
func (asm *Assembler) valueIn(word string, bits int) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := uint32(1)<<bits - 1
	if v32 > limit {
		if int32(v32) < 0 && int32(v32) >= -int32(limit+1)/2 {
			v32 &= limit
		} else {
			err = ErrValueRange
			return
		}
	}

	value = uint16(v32)
	return
}

// register parses a register name v0 to vf.
func (asm *Assembler) register(word string) (reg uint16, err error) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		err = ErrRegisterInvalid
		return
	}
	n, perr := strconv.ParseUint(word[1:], 16, 4)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}
	reg = uint16(n)
	return
}

func (asm *Assembler) isRegister(word string) bool {
	_, err := asm.register(word)
	return err == nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// splitWords splits a line on spaces and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine expands characters, expressions, equates, labels and macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		unique := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			// '@' makes labels unique per expansion site.
			line = strings.ReplaceAll(line, "@", unique)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the load address of the next statement.
func (asm *Assembler) currentAddr() int {
	if len(asm.Statement) == 0 {
		return PROGRAM_START
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Addr + len(last.Data)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddr() > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(st.Data) < 2 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
		}
		st.Data[len(st.Data)-2] |= uint8(addr>>8) & 0xf
		st.Data[len(st.Data)-1] |= uint8(addr)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// address parses a 12-bit address, or returns a label to link later.
func (asm *Assembler) address(word string) (addr uint16, label string, err error) {
	addr, err = asm.valueIn(word, 12)
	if err == nil {
		return
	}
	if !reLabel.MatchString(word) {
		return
	}
	err = nil
	label = word
	return
}

// makeCode packs four nibble-aligned fields into an instruction.
func makeCode(n0, x, y, n uint16) Opcode {
	return Opcode(n0<<12 | (x&0xf)<<8 | (y&0xf)<<4 | n&0xf)
}

func makeCodeKK(n0, x, kk uint16) Opcode {
	return Opcode(n0<<12 | (x&0xf)<<8 | kk&0xff)
}

func makeCodeNNN(n0, nnn uint16) Opcode {
	return Opcode(n0<<12 | nnn&0xfff)
}

// regRegMap maps 8xyN mnemonics to their N.
var regRegMap = map[string]uint16{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xE,
}

// fxMap maps 'ld <target> vx' forms to their Fx low byte.
var fxMap = map[string]uint16{
	"dt":  0x15,
	"st":  0x18,
	"f":   0x29,
	"b":   0x33,
	"[i]": 0x55,
}

// vxFromMap maps 'ld vx <source>' forms to their Fx low byte.
var vxFromMap = map[string]uint16{
	"dt":  0x07,
	"k":   0x0A,
	"[i]": 0x65,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Opcode
	var data []uint8
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || (len(codes) == 0 && len(data) == 0) {
			return
		}
		st := Statement{
			LineNo:    lineno,
			Addr:      asm.currentAddr(),
			Words:     initial_words,
			LinkLabel: label,
			Data:      data,
			Code:      len(codes) > 0,
		}
		for _, code := range codes {
			st.Data = append(st.Data, uint8(code>>8), uint8(code))
		}
		asm.Statement = append(asm.Statement, st)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]
	lower := make([]string, len(args))
	for n, arg := range args {
		lower[n] = strings.ToLower(arg)
	}

	need := func(count int) error {
		switch {
		case len(args) < count:
			return ErrOpcodeValueMissing
		case len(args) > count:
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	switch mnemonic {
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.valueIn(arg, 8)
			if err != nil {
				return
			}
			data = append(data, uint8(value))
		}
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.valueIn(arg, 16)
			if err != nil {
				return
			}
			data = append(data, uint8(value>>8), uint8(value))
		}
	case "nop":
		if err = need(0); err != nil {
			return
		}
		codes = append(codes, 0x0000)
	case "cls":
		if err = need(0); err != nil {
			return
		}
		codes = append(codes, 0x00E0)
	case "ret":
		if err = need(0); err != nil {
			return
		}
		codes = append(codes, 0x00EE)
	case "jp", "call":
		n0 := uint16(0x1)
		if mnemonic == "call" {
			n0 = 0x2
		}
		target := args
		if mnemonic == "jp" && len(lower) == 2 && lower[0] == "v0" {
			n0 = 0xB
			target = args[1:]
		}
		if len(target) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(target) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var addr uint16
		addr, label, err = asm.address(target[0])
		if err != nil {
			return
		}
		codes = append(codes, makeCodeNNN(n0, addr))
	case "se", "sne":
		if err = need(2); err != nil {
			return
		}
		var x, y uint16
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		if asm.isRegister(args[1]) {
			y, _ = asm.register(args[1])
			n0 := uint16(0x5)
			if mnemonic == "sne" {
				n0 = 0x9
			}
			codes = append(codes, makeCode(n0, x, y, 0))
			break
		}
		var kk uint16
		kk, err = asm.valueIn(args[1], 8)
		if err != nil {
			return
		}
		n0 := uint16(0x3)
		if mnemonic == "sne" {
			n0 = 0x4
		}
		codes = append(codes, makeCodeKK(n0, x, kk))
	case "ld":
		if err = need(2); err != nil {
			return
		}
		var code Opcode
		code, label, err = asm.parseLd(args, lower)
		if err != nil {
			return
		}
		codes = append(codes, code)
	case "add":
		if err = need(2); err != nil {
			return
		}
		var x, y uint16
		if lower[0] == "i" {
			x, err = asm.register(args[1])
			if err != nil {
				return
			}
			codes = append(codes, makeCodeKK(0xF, x, 0x1E))
			break
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		if asm.isRegister(args[1]) {
			y, _ = asm.register(args[1])
			codes = append(codes, makeCode(0x8, x, y, 0x4))
			break
		}
		var kk uint16
		kk, err = asm.valueIn(args[1], 8)
		if err != nil {
			return
		}
		codes = append(codes, makeCodeKK(0x7, x, kk))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		var x, y uint16
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		y = x
		if len(args) == 2 {
			y, err = asm.register(args[1])
			if err != nil {
				return
			}
		} else if mnemonic != "shr" && mnemonic != "shl" {
			err = ErrOpcodeValueMissing
			return
		}
		codes = append(codes, makeCode(0x8, x, y, regRegMap[mnemonic]))
	case "rnd":
		if err = need(2); err != nil {
			return
		}
		var x, kk uint16
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		kk, err = asm.valueIn(args[1], 8)
		if err != nil {
			return
		}
		codes = append(codes, makeCodeKK(0xC, x, kk))
	case "drw":
		if err = need(3); err != nil {
			return
		}
		var x, y, n uint16
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		y, err = asm.register(args[1])
		if err != nil {
			return
		}
		n, err = asm.valueIn(args[2], 4)
		if err != nil {
			return
		}
		codes = append(codes, makeCode(0xD, x, y, n))
	case "skp", "sknp":
		if err = need(1); err != nil {
			return
		}
		var x uint16
		x, err = asm.register(args[0])
		if err != nil {
			return
		}
		kk := uint16(0x9E)
		if mnemonic == "sknp" {
			kk = 0xA1
		}
		codes = append(codes, makeCodeKK(0xE, x, kk))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// parseLd handles the many forms of the 'ld' mnemonic.
func (asm *Assembler) parseLd(args, lower []string) (code Opcode, label string, err error) {
	// ld i ADDR
	if lower[0] == "i" {
		var addr uint16
		addr, label, err = asm.address(args[1])
		if err != nil {
			return
		}
		code = makeCodeNNN(0xA, addr)
		return
	}

	// ld dt|st|f|b|[i] vx
	if kk, ok := fxMap[lower[0]]; ok {
		var x uint16
		x, err = asm.register(args[1])
		if err != nil {
			return
		}
		code = makeCodeKK(0xF, x, kk)
		return
	}

	var x uint16
	x, err = asm.register(args[0])
	if err != nil {
		return
	}

	// ld vx dt|k|[i]
	if kk, ok := vxFromMap[lower[1]]; ok {
		code = makeCodeKK(0xF, x, kk)
		return
	}

	// ld vx vy
	if asm.isRegister(args[1]) {
		y, _ := asm.register(args[1])
		code = makeCode(0x8, x, y, 0x0)
		return
	}

	// ld vx BYTE
	var kk uint16
	kk, err = asm.valueIn(args[1], 8)
	if err != nil {
		return
	}
	code = makeCodeKK(0x6, x, kk)
	return
}
