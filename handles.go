package adsgo

import (
	"context"
	"fmt"

	"github.com/larskjeldsen/adsgo/internal/ads"
)

// VariableHandle is a PLC-assigned handle for a symbol, obtained via
// CreateVariableHandle. It stays valid until released with
// DeleteVariableHandle or the connection drops.
type VariableHandle struct {
	Handle uint32
	Symbol string
}

// CreateVariableHandle resolves symbolName to a PLC variable handle that can
// be addressed directly with ReadByHandle/WriteByHandle, bypassing by-name
// symbol resolution on every subsequent access. Release it with
// DeleteVariableHandle when done.
func (c *Client) CreateVariableHandle(ctx context.Context, symbolName string) (*VariableHandle, error) {
	handle, err := c.GetSymbolHandle(ctx, symbolName)
	if err != nil {
		return nil, ClassifyError(fmt.Errorf("create variable handle: %w", err), "create_variable_handle")
	}
	return &VariableHandle{Handle: handle, Symbol: symbolName}, nil
}

// DeleteVariableHandle releases a handle obtained from CreateVariableHandle.
func (c *Client) DeleteVariableHandle(ctx context.Context, h *VariableHandle) error {
	if err := c.ReleaseSymbolHandle(ctx, h.Handle); err != nil {
		return ClassifyError(fmt.Errorf("delete variable handle: %w", err), "delete_variable_handle")
	}
	return nil
}

// ReadByHandle reads length bytes of raw value data addressed by a
// previously created variable handle.
func (c *Client) ReadByHandle(ctx context.Context, h *VariableHandle, length uint32) ([]byte, error) {
	data, err := c.Read(ctx, ads.IndexGroupSymbolValueByHandle, h.Handle, length)
	if err != nil {
		return nil, ClassifyError(fmt.Errorf("read by handle %q: %w", h.Symbol, err), "read_by_handle")
	}
	return data, nil
}

// WriteByHandle writes raw value data addressed by a previously created
// variable handle.
func (c *Client) WriteByHandle(ctx context.Context, h *VariableHandle, data []byte) error {
	if err := c.Write(ctx, ads.IndexGroupSymbolValueByHandle, h.Handle, data); err != nil {
		return ClassifyError(fmt.Errorf("write by handle %q: %w", h.Symbol, err), "write_by_handle")
	}
	return nil
}

// ReadRawByPath creates a handle for symbolName, reads length bytes through
// it, and releases the handle — a one-shot convenience wrapper around
// CreateVariableHandle/ReadByHandle/DeleteVariableHandle for callers that
// don't need to hold the handle across multiple operations.
func (c *Client) ReadRawByPath(ctx context.Context, symbolName string, length uint32) ([]byte, error) {
	h, err := c.CreateVariableHandle(ctx, symbolName)
	if err != nil {
		return nil, err
	}
	defer c.DeleteVariableHandle(ctx, h)
	return c.ReadByHandle(ctx, h, length)
}

// WriteRawByPath creates a handle for symbolName, writes data through it,
// and releases the handle.
func (c *Client) WriteRawByPath(ctx context.Context, symbolName string, data []byte) error {
	h, err := c.CreateVariableHandle(ctx, symbolName)
	if err != nil {
		return err
	}
	defer c.DeleteVariableHandle(ctx, h)
	return c.WriteByHandle(ctx, h, data)
}
