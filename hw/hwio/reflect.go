package hwio

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// BankReg is a register found in a register bank, at its byte offset.
type BankReg struct {
	Offset uint16
	Reg    *Reg8
}

type regTag struct {
	offset    uint16
	hasOffset bool
	reset     uint8
	rwmask    uint8
	flags     RWFlags
	rcb, wcb  bool
}

func parseTag(tag string) (regTag, error) {
	rt := regTag{rwmask: 0xFF}
	for _, opt := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "offset", "reset", "rwmask":
			n, err := strconv.ParseUint(val, 0, 16)
			if err != nil {
				return rt, fmt.Errorf("invalid %s value %q: %w", key, val, err)
			}
			switch key {
			case "offset":
				rt.offset = uint16(n)
				rt.hasOffset = true
			case "reset":
				if n > 0xFF {
					return rt, fmt.Errorf("reset value %q overflows 8 bits", val)
				}
				rt.reset = uint8(n)
			case "rwmask":
				if n > 0xFF {
					return rt, fmt.Errorf("rwmask value %q overflows 8 bits", val)
				}
				rt.rwmask = uint8(n)
			}
		case "readonly":
			rt.flags |= ReadOnlyFlag
		case "writeonly":
			rt.flags |= WriteOnlyFlag
		case "rcb":
			rt.rcb = true
		case "wcb":
			rt.wcb = true
		case "":
		default:
			return rt, fmt.Errorf("unknown option %q", key)
		}
	}
	if !rt.hasOffset {
		return rt, fmt.Errorf("missing offset")
	}
	return rt, nil
}

// InitRegs initializes all the Reg8 fields of the structure pointed to by
// bank that have a "hwio" struct tag. The tag holds a comma separated list of
// options:
//
//	offset=0x12     Byte-offset of the register within the bank (mandatory).
//	reset=0x34      Value at reset.
//	rwmask=0x0f     Bits that can be written, others are read-only.
//	readonly        Writes are rejected.
//	writeonly       Reads are rejected.
//	wcb             Call bank.WriteNAME(old, val uint8) after each write.
//	rcb             Call bank.ReadNAME(val uint8, peek bool) uint8 on reads.
//
// NAME is the uppercased field name.
func InitRegs(bank any) error {
	_, err := initBank(bank)
	return err
}

// BankRegs initializes the registers of bank, like InitRegs, and returns
// them ordered by offset.
func BankRegs(bank any) ([]BankReg, error) {
	return initBank(bank)
}

var reg8Type = reflect.TypeOf(Reg8{})

func initBank(bank any) ([]BankReg, error) {
	pv := reflect.ValueOf(bank)
	if pv.Kind() != reflect.Pointer || pv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}

	var regs []BankReg
	sv := pv.Elem()
	st := sv.Type()
	for i := range st.NumField() {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		if field.Type != reg8Type {
			return nil, fmt.Errorf("hwio: %s.%s: unsupported register type %s", st.Name(), field.Name, field.Type)
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("hwio: %s.%s: register field must be exported", st.Name(), field.Name)
		}

		rt, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("hwio: %s.%s: %w", st.Name(), field.Name, err)
		}

		reg := sv.Field(i).Addr().Interface().(*Reg8)
		reg.Name = field.Name
		reg.Value = rt.reset
		reg.RoMask = ^rt.rwmask
		reg.Flags = rt.flags

		upper := strings.ToUpper(field.Name)
		if rt.wcb {
			name := "Write" + upper
			m := pv.MethodByName(name)
			if !m.IsValid() {
				return nil, fmt.Errorf("hwio: %s: missing method %s", st.Name(), name)
			}
			cb, ok := m.Interface().(func(uint8, uint8))
			if !ok {
				return nil, fmt.Errorf("hwio: %s.%s: wrong signature %s", st.Name(), name, m.Type())
			}
			reg.WriteCb = cb
		}
		if rt.rcb {
			name := "Read" + upper
			m := pv.MethodByName(name)
			if !m.IsValid() {
				return nil, fmt.Errorf("hwio: %s: missing method %s", st.Name(), name)
			}
			cb, ok := m.Interface().(func(uint8, bool) uint8)
			if !ok {
				return nil, fmt.Errorf("hwio: %s.%s: wrong signature %s", st.Name(), name, m.Type())
			}
			reg.ReadCb = cb
		}

		regs = append(regs, BankReg{Offset: rt.offset, Reg: reg})
	}

	slices.SortFunc(regs, func(a, b BankReg) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	for i := 1; i < len(regs); i++ {
		if regs[i].Offset == regs[i-1].Offset {
			return nil, fmt.Errorf("hwio: %s: %s and %s share offset 0x%02x",
				st.Name(), regs[i-1].Reg.Name, regs[i].Reg.Name, regs[i].Offset)
		}
	}
	return regs, nil
}
