package amo

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WordMemory is direct machine-word access to memory, standing in for raw pointer
// dereferences in a trap handler. The caller guarantees addresses are valid and mapped;
// an implementation may panic with a *MemoryFault otherwise, which the core does not catch.
type WordMemory interface {
	LoadWord(addr U64) U64
	StoreWord(addr U64, v U64)
}

// InstrMemory reads the 4-byte aligned instruction word at addr.
type InstrMemory interface {
	LoadInstrWord(addr U64) uint32
}

type MemoryFault struct {
	Addr  U64
	Write bool
}

func (f *MemoryFault) Error() string {
	if f.Write {
		return fmt.Sprintf("store access fault at %016x", f.Addr)
	}
	return fmt.Sprintf("load access fault at %016x", f.Addr)
}

// Note: 2**12 = 4 KiB, the minimum page-size of the platforms we emulate for.
const (
	PageAddrSize = 12
	PageKeySize  = 64 - PageAddrSize
	PageSize     = 1 << PageAddrSize
	PageAddrMask = PageSize - 1
)

type Page [PageSize]byte

func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Bytes(p[:]))
}

func (p *Page) UnmarshalJSON(dat []byte) error {
	var b hexutil.Bytes
	if err := json.Unmarshal(dat, &b); err != nil {
		return err
	}
	if len(b) != PageSize {
		return fmt.Errorf("expected %d page bytes, got %d", PageSize, len(b))
	}
	copy(p[:], b)
	return nil
}

// Memory is a sparse little-endian byte-addressed memory, allocating pages on write.
// It stands in for physical memory in tests and tooling.
type Memory struct {
	pages map[uint64]*Page

	// strict memory faults on access to pages that were never written or loaded.
	strict bool

	// two caches: the instruction page and the data page are usually different.
	// this prevents map lookups each access
	lastPageKeys [2]uint64
	lastPage     [2]*Page
}

func NewMemory() *Memory {
	return &Memory{
		pages:        make(map[uint64]*Page),
		lastPageKeys: [2]uint64{^uint64(0), ^uint64(0)}, // default to invalid keys, to not match any pages
	}
}

// NewStrictMemory returns a Memory that faults on unmapped pages instead of reading zeroes.
func NewStrictMemory() *Memory {
	m := NewMemory()
	m.strict = true
	return m
}

func (m *Memory) SetStrict(strict bool) {
	m.strict = strict
}

func (m *Memory) PageCount() int {
	return len(m.pages)
}

func (m *Memory) ForEachPage(fn func(pageIndex uint64, page *Page) error) error {
	for pageIndex, p := range m.pages {
		if err := fn(pageIndex, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) pageLookup(pageIndex uint64) (*Page, bool) {
	// hit caches
	if pageIndex == m.lastPageKeys[0] {
		return m.lastPage[0], true
	}
	if pageIndex == m.lastPageKeys[1] {
		return m.lastPage[1], true
	}
	p, ok := m.pages[pageIndex]

	// only cache existing pages.
	if ok {
		m.lastPageKeys[1] = m.lastPageKeys[0]
		m.lastPage[1] = m.lastPage[0]
		m.lastPageKeys[0] = pageIndex
		m.lastPage[0] = p
	}

	return p, ok
}

func (m *Memory) AllocPage(pageIndex uint64) *Page {
	p := new(Page)
	m.pages[pageIndex] = p
	for i, k := range m.lastPageKeys {
		if k == pageIndex {
			m.lastPage[i] = p
		}
	}
	return p
}

func (m *Memory) SetUnaligned(addr uint64, dat []byte) {
	if len(dat) > 32 {
		panic("cannot set more than 32 bytes")
	}
	pageIndex := addr >> PageAddrSize
	pageAddr := addr & PageAddrMask
	p, ok := m.pageLookup(pageIndex)
	if !ok {
		if m.strict {
			panic(&MemoryFault{Addr: addr, Write: true})
		}
		p = m.AllocPage(pageIndex)
	}

	d := copy(p[pageAddr:], dat)
	if d == len(dat) {
		return // if all the data fitted in the page, we're done
	}

	// continue to remaining part
	addr += uint64(d)
	pageIndex = addr >> PageAddrSize
	pageAddr = addr & PageAddrMask
	p, ok = m.pageLookup(pageIndex)
	if !ok {
		if m.strict {
			panic(&MemoryFault{Addr: addr, Write: true})
		}
		p = m.AllocPage(pageIndex)
	}

	copy(p[pageAddr:], dat[d:])
}

func (m *Memory) GetUnaligned(addr uint64, dest []byte) {
	if len(dest) > 32 {
		panic("cannot get more than 32 bytes")
	}
	pageIndex := addr >> PageAddrSize
	pageAddr := addr & PageAddrMask
	p, ok := m.pageLookup(pageIndex)
	var d int
	if !ok {
		if m.strict {
			panic(&MemoryFault{Addr: addr})
		}
		l := PageSize - pageAddr
		if l > uint64(len(dest)) {
			l = uint64(len(dest))
		}
		var zeroes [32]byte
		d = copy(dest, zeroes[:l])
	} else {
		d = copy(dest, p[pageAddr:])
	}

	if d == len(dest) {
		return // if all the data fitted in the page, we're done
	}

	// continue to remaining part
	addr += uint64(d)
	pageIndex = addr >> PageAddrSize
	pageAddr = addr & PageAddrMask
	p, ok = m.pageLookup(pageIndex)
	if !ok {
		if m.strict {
			panic(&MemoryFault{Addr: addr})
		}
		var zeroes [32]byte
		copy(dest[d:], zeroes[:])
	} else {
		copy(dest[d:], p[pageAddr:])
	}
}

// LoadWord reads the little-endian machine word at addr.
func (m *Memory) LoadWord(addr U64) U64 {
	var out [8]byte
	m.GetUnaligned(addr, out[:])
	return binary.LittleEndian.Uint64(out[:])
}

// StoreWord writes v as a little-endian machine word at addr.
func (m *Memory) StoreWord(addr U64, v U64) {
	var dat [8]byte
	binary.LittleEndian.PutUint64(dat[:], v)
	m.SetUnaligned(addr, dat[:])
}

// LoadInstrWord reads the little-endian 32-bit word at addr.
func (m *Memory) LoadInstrWord(addr U64) uint32 {
	var out [4]byte
	m.GetUnaligned(addr, out[:])
	return binary.LittleEndian.Uint32(out[:])
}

type pageEntry struct {
	Index uint64 `json:"index"`
	Data  *Page  `json:"data"`
}

func (m *Memory) MarshalJSON() ([]byte, error) {
	pages := make([]pageEntry, 0, len(m.pages))
	for k, p := range m.pages {
		pages = append(pages, pageEntry{
			Index: k,
			Data:  p,
		})
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
	return json.Marshal(pages)
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var pages []pageEntry
	if err := json.Unmarshal(data, &pages); err != nil {
		return err
	}
	m.pages = make(map[uint64]*Page)
	m.lastPageKeys = [2]uint64{^uint64(0), ^uint64(0)}
	m.lastPage = [2]*Page{nil, nil}
	for i, p := range pages {
		if _, ok := m.pages[p.Index]; ok {
			return fmt.Errorf("cannot load duplicate page, entry %d, page index %d", i, p.Index)
		}
		if p.Data == nil {
			return fmt.Errorf("missing data of page entry %d, page index %d", i, p.Index)
		}
		m.pages[p.Index] = p.Data
	}
	return nil
}

// SetMemoryRange copies r into memory starting at addr, allocating pages as needed.
// Mapping a range is how strict memory gets valid pages.
func (m *Memory) SetMemoryRange(addr uint64, r io.Reader) error {
	for {
		pageIndex := addr >> PageAddrSize
		pageAddr := addr & PageAddrMask
		p, ok := m.pageLookup(pageIndex)
		if !ok {
			p = m.AllocPage(pageIndex)
		}
		n, err := r.Read(p[pageAddr:])
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		addr += uint64(n)
	}
}

// Serialize writes the memory in a simple binary format which can be read again using Deserialize
// The format is a simple concatenation of fields, with prefixed item count for repeating items and using big endian
// encoding for numbers.
//
// len(PageCount)    uint64
// For each page (order is ascending by page index):
//
//	page index          uint64
//	page Data           [PageSize]byte
func (m *Memory) Serialize(out io.Writer) error {
	if err := binary.Write(out, binary.BigEndian, uint64(m.PageCount())); err != nil {
		return err
	}
	indices := make([]uint64, 0, len(m.pages))
	for pageIndex := range m.pages {
		indices = append(indices, pageIndex)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, pageIndex := range indices {
		if err := binary.Write(out, binary.BigEndian, pageIndex); err != nil {
			return err
		}
		if _, err := out.Write(m.pages[pageIndex][:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Deserialize(in io.Reader) error {
	var pageCount uint64
	if err := binary.Read(in, binary.BigEndian, &pageCount); err != nil {
		return err
	}
	for i := uint64(0); i < pageCount; i++ {
		var pageIndex uint64
		if err := binary.Read(in, binary.BigEndian, &pageIndex); err != nil {
			return err
		}
		page := m.AllocPage(pageIndex)
		if _, err := io.ReadFull(in, page[:]); err != nil {
			return err
		}
	}
	return nil
}

type memReader struct {
	m     *Memory
	addr  uint64
	count uint64
}

func (r *memReader) Read(dest []byte) (n int, err error) {
	if r.count == 0 {
		return 0, io.EOF
	}

	// Keep iterating over memory until we have all our data.
	// It may wrap around the address range, and may not be aligned
	endAddr := r.addr + r.count

	pageIndex := r.addr >> PageAddrSize
	start := r.addr & PageAddrMask
	end := uint64(PageSize)

	if pageIndex == (endAddr >> PageAddrSize) {
		end = endAddr & PageAddrMask
	}
	p, ok := r.m.pageLookup(pageIndex)
	if ok {
		n = copy(dest, p[start:end])
	} else {
		n = copy(dest, make([]byte, end-start)) // default to zeroes
	}
	r.addr += uint64(n)
	r.count -= uint64(n)
	return n, nil
}

func (m *Memory) ReadMemoryRange(addr uint64, count uint64) io.Reader {
	return &memReader{m: m, addr: addr, count: count}
}

func (m *Memory) Usage() string {
	total := uint64(len(m.pages)) * PageSize
	const unit = 1024
	if total < unit {
		return fmt.Sprintf("%d B", total)
	}
	div, exp := uint64(unit), 0
	for n := total / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	// KiB, MiB, GiB, TiB, ...
	return fmt.Sprintf("%.1f %ciB", float64(total)/float64(div), "KMGTPE"[exp])
}
