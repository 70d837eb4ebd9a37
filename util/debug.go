// Copyright 2022 The Armored Witness OS authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"bytes"
	"debug/elf"
	"debug/gosym"
	"errors"
	"fmt"
	"sync"
)

// Symbols represents the debugging information of an ELF executable.
type Symbols struct {
	sync.Mutex

	exe   *elf.File
	table *gosym.Table
}

// NewSymbols parses the argument ELF executable.
func NewSymbols(buf []byte) (s *Symbols, err error) {
	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}

	return &Symbols{exe: exe}, nil
}

// LookupSym returns the named symbol.
func (s *Symbols) LookupSym(name string) (*elf.Symbol, error) {
	syms, err := s.exe.Symbols()

	if err != nil {
		return nil, err
	}

	for _, sym := range syms {
		if sym.Name == name {
			return &sym, nil
		}
	}

	return nil, errors.New("symbol not found")
}

// Text returns the Go runtime text segment bounds.
func (s *Symbols) Text() (start uint64, end uint64, err error) {
	sym, err := s.LookupSym("runtime.text")

	if err != nil {
		return 0, 0, fmt.Errorf("could not find runtime.text symbol, %v", err)
	}

	start = sym.Value

	if sym, err = s.LookupSym("runtime.etext"); err != nil {
		return 0, 0, fmt.Errorf("could not find runtime.etext symbol, %v", err)
	}

	return start, sym.Value, nil
}

func (s *Symbols) goSymTable() (symTable *gosym.Table, err error) {
	s.Lock()
	defer s.Unlock()

	if s.table != nil {
		return s.table, nil
	}

	text := s.exe.Section(".text")
	pclntab := s.exe.Section(".gopclntab")

	if text == nil || pclntab == nil {
		return nil, errors.New("missing Go line table")
	}

	lineTableData, err := pclntab.Data()

	if err != nil {
		return
	}

	lineTable := gosym.NewLineTable(lineTableData, text.Addr)

	var symTableData []byte

	if symtab := s.exe.Section(".gosymtab"); symtab != nil {
		if symTableData, err = symtab.Data(); err != nil {
			return
		}
	}

	if s.table, err = gosym.NewTable(symTableData, lineTable); err != nil {
		return
	}

	return s.table, nil
}

// PCToLine returns the source location of a program counter.
func (s *Symbols) PCToLine(pc uint64) (l string, err error) {
	symTable, err := s.goSymTable()

	if err != nil {
		return
	}

	file, line, fn := symTable.PCToLine(pc)

	if fn == nil {
		return "", fmt.Errorf("no function at %#x", pc)
	}

	return fmt.Sprintf("%s:%d %s", file, line, fn.Name), nil
}
