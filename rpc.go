package adsgo

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/larskjeldsen/adsgo/internal/ads"
	"github.com/larskjeldsen/adsgo/internal/symbols"
)

// InvokeRpcMethod calls a TcRpcEnable'd method on a function-block instance
// addressed by symbolPath. inputs supplies values for the method's VAR_INPUT
// and VAR_IN_OUT parameters, keyed by parameter name; any parameter missing
// from inputs is encoded as zero bytes. The returned outputs map holds the
// method's VAR_OUTPUT and VAR_IN_OUT parameters after the call.
//
// The method descriptor (VTable index, return type, parameter list) is read
// from the data-type metadata of the instance's containing function block,
// uploaded and cached the same way struct field layouts are. The call itself
// is a single ReadWrite against the instance's variable handle: the write
// payload is the method's VTable index followed by the encoded input
// parameters in declaration order, and the read payload is the return value
// followed by the encoded output parameters, also in declaration order.
func (c *Client) InvokeRpcMethod(ctx context.Context, symbolPath, methodName string, inputs map[string]interface{}) (returnValue interface{}, outputs map[string]interface{}, err error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return nil, nil, ClassifyError(err, "invoke_rpc_method")
	}

	symbol, err := c.GetSymbol(symbolPath)
	if err != nil {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %w", err), "invoke_rpc_method")
	}

	typeInfo, ok := c.resolveTypeInfo(ctx, symbol.Type.Name)
	if !ok {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: no type information for %q", symbol.Type.Name), "invoke_rpc_method")
	}

	method, ok := typeInfo.FindRpcMethod(methodName)
	if !ok {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %q has no method %q", symbol.Type.Name, methodName), "invoke_rpc_method")
	}

	handle, err := c.GetSymbolHandle(ctx, symbolPath)
	if err != nil {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %w", err), "invoke_rpc_method")
	}
	defer func() {
		if relErr := c.ReleaseSymbolHandle(ctx, handle); relErr != nil {
			c.logger.Warn("invoke rpc method: failed to release handle", "symbol", symbolPath, "error", relErr)
		}
	}()

	writeData, err := encodeRpcCallPayload(method, inputs)
	if err != nil {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %w", err), "invoke_rpc_method")
	}

	readLength := method.ReturnSize
	for _, p := range method.Parameters {
		if p.Out() {
			readLength += p.Size
		}
	}

	c.logger.Debug("invoking rpc method", "symbol", symbolPath, "method", methodName, "handle", handle)

	respData, err := c.ReadWrite(ctx, ads.IndexGroupRpcMethodCall, handle, readLength, writeData)
	if err != nil {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %w", err), "invoke_rpc_method")
	}

	returnValue, outputs, err = decodeRpcCallResponse(method, respData)
	if err != nil {
		return nil, nil, ClassifyError(fmt.Errorf("invoke rpc method: %w", err), "invoke_rpc_method")
	}

	c.logger.Debug("rpc method call succeeded", "symbol", symbolPath, "method", methodName)
	return returnValue, outputs, nil
}

// encodeRpcCallPayload builds the write payload for an RPC method call: the
// VTable index followed by every In/InOut parameter, in declaration order.
func encodeRpcCallPayload(method symbols.RpcMethod, inputs map[string]interface{}) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, method.VTableIndex)

	for _, p := range method.Parameters {
		if !p.In() {
			continue
		}

		value, provided := inputs[p.Name]
		var encoded []byte
		if !provided || value == nil {
			encoded = make([]byte, p.Size)
		} else {
			var err error
			encoded, err = encodeSymbolValue(value, &symbols.Symbol{Size: p.Size})
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
			}
		}

		if uint32(len(encoded)) != p.Size {
			padded := make([]byte, p.Size)
			copy(padded, encoded)
			encoded = padded
		}
		buf = append(buf, encoded...)
	}

	return buf, nil
}

// decodeRpcCallResponse splits the read payload into the return value and
// the Out/InOut parameters, in declaration order.
func decodeRpcCallResponse(method symbols.RpcMethod, data []byte) (interface{}, map[string]interface{}, error) {
	pos := 0

	var returnValue interface{}
	if method.ReturnSize > 0 {
		if pos+int(method.ReturnSize) > len(data) {
			return nil, nil, fmt.Errorf("response too short for return value: need %d bytes, got %d", method.ReturnSize, len(data))
		}
		returnValue, _ = parseSimpleTypeByName(data[pos:pos+int(method.ReturnSize)], method.ReturnTypeName)
		pos += int(method.ReturnSize)
	}

	outputs := make(map[string]interface{})
	for _, p := range method.Parameters {
		if !p.Out() {
			continue
		}
		if pos+int(p.Size) > len(data) {
			return nil, nil, fmt.Errorf("response too short for output %q: need %d bytes at offset %d, got %d total", p.Name, p.Size, pos, len(data))
		}
		value, err := parseSimpleTypeByName(data[pos:pos+int(p.Size)], p.TypeName)
		if err != nil {
			value = fmt.Sprintf("0x%x", data[pos:pos+int(p.Size)])
		}
		outputs[p.Name] = value
		pos += int(p.Size)
	}

	return returnValue, outputs, nil
}
