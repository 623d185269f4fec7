package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

const localnetToken = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// Network is the algod endpoint the adapters talk to.
type Network struct {
	Server string
	Port   string
	Token  string
}

var presets = map[string]Network{
	"localnet": {Server: "http://localhost", Port: "4001", Token: localnetToken},
	"testnet":  {Server: "https://testnet-api.algonode.cloud", Port: "443"},
	"mainnet":  {Server: "https://mainnet-api.algonode.cloud", Port: "443"},
}

// ResolveNetwork starts from the named preset (testnet when unknown) and applies
// any non-empty overrides.
func ResolveNetwork(name, server, port, token string) Network {
	n, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		n = presets["testnet"]
	}
	if server != "" {
		n.Server = server
	}
	if port != "" {
		n.Port = port
	}
	if token != "" {
		n.Token = token
	}
	return n
}

func (n Network) Address() string {
	if n.Port == "" {
		return n.Server
	}
	return fmt.Sprintf("%s:%s", strings.TrimRight(n.Server, "/"), n.Port)
}

// Node is the subset of algod the payment and mint adapters need.
type Node interface {
	Balance(ctx context.Context, address string) (uint64, error)
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	Submit(ctx context.Context, signedTxn []byte) (string, error)
	WaitForConfirmation(ctx context.Context, txID string, rounds uint64) (models.PendingTransactionInfoResponse, error)
}

type algodNode struct {
	client *algod.Client
}

func NewNode(n Network) (Node, error) {
	client, err := algod.MakeClient(n.Address(), n.Token)
	if err != nil {
		return nil, fmt.Errorf("create algod client: %w", err)
	}
	return &algodNode{client: client}, nil
}

func (a *algodNode) Balance(ctx context.Context, address string) (uint64, error) {
	info, err := a.client.AccountInformation(address).Do(ctx)
	if err != nil {
		return 0, err
	}
	return info.Amount, nil
}

func (a *algodNode) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return a.client.SuggestedParams().Do(ctx)
}

func (a *algodNode) Submit(ctx context.Context, signedTxn []byte) (string, error) {
	return a.client.SendRawTransaction(signedTxn).Do(ctx)
}

func (a *algodNode) WaitForConfirmation(ctx context.Context, txID string, rounds uint64) (models.PendingTransactionInfoResponse, error) {
	return transaction.WaitForConfirmation(a.client, txID, rounds, ctx)
}
