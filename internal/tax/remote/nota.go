package remote

import (
	"context"
	"encoding/json"
)

// Endpoint paths on the remote service.
const (
	EndpointPIT           = "/tax/pit/calculate"
	EndpointCIT           = "/tax/cit/calculate"
	EndpointCGT           = "/tax/cgt/calculate"
	EndpointTaxableIncome = "/tax/taxable-income"
)

// Invoker is satisfied by *Client.
type Invoker interface {
	Invoke(ctx context.Context, endpoint string, body any, opts ...CallOption) ([]byte, error)
}

// NOTA exposes the typed endpoints of the remote calculation service. Every
// response is decoded and validated before it is cached or returned.
type NOTA struct {
	client Invoker
}

func NewNOTA(client Invoker) *NOTA {
	return &NOTA{client: client}
}

func (n *NOTA) CalculatePIT(ctx context.Context, req PITRequest) (*PITResponse, error) {
	return call[PITResponse](ctx, n.client, EndpointPIT, req)
}

func (n *NOTA) CalculateCIT(ctx context.Context, req CITRequest) (*CITResponse, error) {
	return call[CITResponse](ctx, n.client, EndpointCIT, req)
}

func (n *NOTA) CalculateCGT(ctx context.Context, req CGTRequest) (*CGTResponse, error) {
	return call[CGTResponse](ctx, n.client, EndpointCGT, req)
}

func (n *NOTA) CalculateTaxableIncome(ctx context.Context, req TaxableIncomeRequest) (*TaxableIncomeResponse, error) {
	return call[TaxableIncomeResponse](ctx, n.client, EndpointTaxableIncome, req)
}

type validated[T any] interface {
	*T
	Validate() error
}

func call[T any, P validated[T]](ctx context.Context, inv Invoker, endpoint string, body any) (*T, error) {
	payload, err := inv.Invoke(ctx, endpoint, body, WithValidator(decodeValid[T, P]))
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, NewError(CategoryBadData, endpoint, "decode response", err)
	}
	if err := P(&out).Validate(); err != nil {
		return nil, NewError(CategoryBadData, endpoint, "invalid response", err)
	}
	return &out, nil
}

func decodeValid[T any, P validated[T]](payload []byte) error {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return err
	}
	return P(&out).Validate()
}
