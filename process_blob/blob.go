package process_blob

import (
	"encoding/binary"
	"errors"

	"uescope/process"
)

var ErrOutOfBounds = errors.New("address out of bounds")

// ProcessBlob is a snapshot of target memory taken at baseaddress
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

var _ process.MemoryReader = (*ProcessBlob)(nil)
var _ process.ProcessOffset = (*ProcessBlob)(nil)

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

// ReadProcessBlob snapshots size bytes at addr
func ReadProcessBlob(mem process.MemoryReader, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (*ProcessBlob, error) {
	data, err := mem.ReadMemory(addr, size)
	if err != nil {
		return nil, err
	}
	return NewProcessBlob(addr, data), nil
}

// Address returns the address the snapshot was taken at
func (p *ProcessBlob) Address() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr < p.baseaddress {
		return nil, ErrOutOfBounds
	}
	return p.slice(addr-p.baseaddress, size)
}

func (p *ProcessBlob) slice(offset process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if uint64(offset)+uint64(size) > uint64(len(p.data)) {
		return nil, ErrOutOfBounds
	}
	return p.data[offset : uint64(offset)+uint64(size)], nil
}

func (p *ProcessBlob) OffsetUINT8(offset process.ProcessMemoryAddress) (uint8, error) {
	data, err := p.slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (p *ProcessBlob) OffsetUINT16(offset process.ProcessMemoryAddress) (uint16, error) {
	data, err := p.slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func (p *ProcessBlob) OffsetUINT32(offset process.ProcessMemoryAddress) (uint32, error) {
	data, err := p.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (p *ProcessBlob) OffsetUINT64(offset process.ProcessMemoryAddress) (uint64, error) {
	data, err := p.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

func (p *ProcessBlob) OffsetINT32(offset process.ProcessMemoryAddress) (int32, error) {
	v, err := p.OffsetUINT32(offset)
	return int32(v), err
}

func (p *ProcessBlob) OffsetINT64(offset process.ProcessMemoryAddress) (int64, error) {
	v, err := p.OffsetUINT64(offset)
	return int64(v), err
}

func (p *ProcessBlob) OffsetPOINTER(offset process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	v, err := p.OffsetUINT64(offset)
	if err != nil {
		return 0, err
	}
	return process.ProcessMemoryAddress(v), nil
}

func (p *ProcessBlob) OffsetPOINTER2(offset process.ProcessMemoryAddress) process.ProcessMemoryAddress {
	ptr, err := p.OffsetPOINTER(offset)
	if err != nil {
		return 0
	}
	return ptr
}

func (p *ProcessBlob) OffsetBlob(offset process.ProcessMemoryAddress, size process.ProcessMemorySize) (process.ProcessOffset, error) {
	data, err := p.slice(offset, size)
	if err != nil {
		return nil, err
	}
	return NewProcessBlob(p.baseaddress+offset, data), nil
}

// OffsetWideString decodes a NUL-terminated UTF-16LE string stored inline at offset
func (p *ProcessBlob) OffsetWideString(offset process.ProcessMemoryAddress) (string, error) {
	if uint64(offset) > uint64(len(p.data)) {
		return "", ErrOutOfBounds
	}
	return process.DecodeWideString(p.data[offset:])
}
