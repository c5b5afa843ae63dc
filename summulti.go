package adsgo

import (
	"context"
	"fmt"

	"github.com/larskjeldsen/adsgo/internal/ads"
)

// ReadItem describes one independent read in a batched ReadMulti call.
type ReadItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	Length      uint32
}

// ReadResult is the outcome of one item in a ReadMulti call: its own ADS
// error and data, independent of the other items in the batch.
type ReadResult struct {
	Err  error
	Data []byte
}

// ReadMulti batches N independent reads into a single ADS SumCommandRead
// round trip (IndexGroupSumCommandRead via ReadWrite). Each item's success
// or failure is reported independently in the returned slice; a non-nil
// return error only indicates the batch itself could not be sent or parsed.
func (c *Client) ReadMulti(ctx context.Context, items []ReadItem) ([]ReadResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	sumItems := make([]ads.SumReadItem, len(items))
	for i, it := range items {
		sumItems[i] = ads.SumReadItem{IndexGroup: it.IndexGroup, IndexOffset: it.IndexOffset, ReadLength: it.Length}
	}

	writeData := ads.EncodeSumReadRequest(sumItems)
	readLength := ads.SumReadTotalReadLength(sumItems)

	respData, err := c.ReadWrite(ctx, ads.IndexGroupSumCommandRead, uint32(len(items)), readLength, writeData)
	if err != nil {
		return nil, fmt.Errorf("read multi: %w", err)
	}

	sumResults, err := ads.DecodeSumReadResponse(respData, sumItems)
	if err != nil {
		return nil, fmt.Errorf("read multi: %w", err)
	}

	results := make([]ReadResult, len(sumResults))
	for i, r := range sumResults {
		results[i].Data = r.Data
		if r.Result != 0 {
			results[i].Err = ads.Error(r.Result)
		}
	}
	return results, nil
}

// WriteItem describes one independent write in a batched WriteMulti call.
type WriteItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	Data        []byte
}

// WriteMulti batches N independent writes into a single ADS SumCommandWrite
// round trip. Returns one error per item, in request order; a non-nil
// return error only indicates the batch itself could not be sent or parsed.
func (c *Client) WriteMulti(ctx context.Context, items []WriteItem) ([]error, error) {
	if len(items) == 0 {
		return nil, nil
	}

	sumItems := make([]ads.SumWriteItem, len(items))
	for i, it := range items {
		sumItems[i] = ads.SumWriteItem{IndexGroup: it.IndexGroup, IndexOffset: it.IndexOffset, Data: it.Data}
	}

	writeData := ads.EncodeSumWriteRequest(sumItems)
	readLength := ads.SumWriteTotalReadLength(sumItems)

	respData, err := c.ReadWrite(ctx, ads.IndexGroupSumCommandWrite, uint32(len(items)), readLength, writeData)
	if err != nil {
		return nil, fmt.Errorf("write multi: %w", err)
	}

	codes, err := ads.DecodeSumWriteResponse(respData, len(items))
	if err != nil {
		return nil, fmt.Errorf("write multi: %w", err)
	}

	errs := make([]error, len(codes))
	for i, code := range codes {
		if code != 0 {
			errs[i] = ads.Error(code)
		}
	}
	return errs, nil
}

// ReadWriteItem describes one independent read-write in a batched
// ReadWriteMulti call.
type ReadWriteItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	ReadLength  uint32
	WriteData   []byte
}

// ReadWriteMulti batches N independent read-writes into a single ADS
// SumCommandReadWrite round trip. Returns one result per item, in request
// order; a non-nil return error only indicates the batch itself could not
// be sent or parsed.
func (c *Client) ReadWriteMulti(ctx context.Context, items []ReadWriteItem) ([]ReadResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	sumItems := make([]ads.SumReadWriteItem, len(items))
	for i, it := range items {
		sumItems[i] = ads.SumReadWriteItem{
			IndexGroup:  it.IndexGroup,
			IndexOffset: it.IndexOffset,
			ReadLength:  it.ReadLength,
			WriteData:   it.WriteData,
		}
	}

	writeData := ads.EncodeSumReadWriteRequest(sumItems)
	readLength := ads.SumReadWriteTotalReadLength(sumItems)

	respData, err := c.ReadWrite(ctx, ads.IndexGroupSumCommandReadWrite, uint32(len(items)), readLength, writeData)
	if err != nil {
		return nil, fmt.Errorf("read-write multi: %w", err)
	}

	sumResults, err := ads.DecodeSumReadWriteResponse(respData, sumItems)
	if err != nil {
		return nil, fmt.Errorf("read-write multi: %w", err)
	}

	results := make([]ReadResult, len(sumResults))
	for i, r := range sumResults {
		results[i].Data = r.Data
		if r.Result != 0 {
			results[i].Err = ads.Error(r.Result)
		}
	}
	return results, nil
}
