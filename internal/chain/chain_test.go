package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	balance    uint64
	balanceErr error
	submitErr  error
	waitErr    error
	assetIndex uint64
	submitted  [][]byte
}

func (f *fakeNode) Balance(ctx context.Context, address string) (uint64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeNode) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return types.SuggestedParams{
		Fee:             1000,
		FlatFee:         true,
		MinFee:          1000,
		FirstRoundValid: 100,
		LastRoundValid:  1100,
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
	}, nil
}

func (f *fakeNode) Submit(ctx context.Context, signedTxn []byte) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, signedTxn)
	return "TXID", nil
}

func (f *fakeNode) WaitForConfirmation(ctx context.Context, txID string, rounds uint64) (models.PendingTransactionInfoResponse, error) {
	if f.waitErr != nil {
		return models.PendingTransactionInfoResponse{}, f.waitErr
	}
	return models.PendingTransactionInfoResponse{ConfirmedRound: 105, AssetIndex: f.assetIndex}, nil
}

func fundedMnemonic(t *testing.T) string {
	t.Helper()
	m, err := mnemonic.FromPrivateKey(crypto.GenerateAccount().PrivateKey)
	require.NoError(t, err)
	return m
}

var half = decimal.RequireFromString("0.5")

func TestResolveNetwork(t *testing.T) {
	n := ResolveNetwork("localnet", "", "", "")
	assert.Equal(t, "http://localhost:4001", n.Address())
	assert.Len(t, n.Token, 64)

	n = ResolveNetwork("bogus", "", "", "")
	assert.Equal(t, "https://testnet-api.algonode.cloud:443", n.Address())

	n = ResolveNetwork("mainnet", "https://node.example", "8080", "tok")
	assert.Equal(t, "https://node.example:8080", n.Address())
	assert.Equal(t, "tok", n.Token)
}

func TestAddressValidator(t *testing.T) {
	v := AddressValidator{}
	assert.NoError(t, v.Validate(crypto.GenerateAccount().Address.String()))

	err := v.Validate("not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
}

func TestPayout_MissingMnemonic(t *testing.T) {
	node := &fakeNode{balance: 10_000_000}
	g := NewPaymentGateway(node, "  ", 4)

	_, err := g.Payout(context.Background(), crypto.GenerateAccount().Address.String(), half)
	require.ErrorIs(t, err, domain.ErrGatewayConfiguration)
	assert.Contains(t, err.Error(), "FUNDED_WALLET_MNEMONIC not configured")
	assert.Empty(t, node.submitted)
	assert.Empty(t, g.FundedAddress())
}

func TestPayout_InvalidMnemonic(t *testing.T) {
	g := NewPaymentGateway(&fakeNode{}, "one two three", 4)

	_, err := g.Payout(context.Background(), crypto.GenerateAccount().Address.String(), half)
	assert.ErrorIs(t, err, domain.ErrGatewayConfiguration)
}

func TestPayout_InsufficientFunds(t *testing.T) {
	node := &fakeNode{balance: 100_000}
	g := NewPaymentGateway(node, fundedMnemonic(t), 4)

	_, err := g.Payout(context.Background(), crypto.GenerateAccount().Address.String(), half)
	require.ErrorIs(t, err, domain.ErrGatewayInsufficientFunds)
	assert.Empty(t, node.submitted)
}

func TestPayout_Success(t *testing.T) {
	node := &fakeNode{balance: 10_000_000}
	g := NewPaymentGateway(node, fundedMnemonic(t), 4)
	dest := crypto.GenerateAccount().Address.String()

	receipt, err := g.Payout(context.Background(), dest, half)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ReferenceID)
	assert.EqualValues(t, 105, receipt.Round)
	require.Len(t, node.submitted, 1)

	var stx types.SignedTxn
	require.NoError(t, msgpack.Decode(node.submitted[0], &stx))
	assert.Equal(t, types.PaymentTx, stx.Txn.Type)
	assert.EqualValues(t, 500_000, stx.Txn.Amount)
	assert.Equal(t, dest, stx.Txn.Receiver.String())
	assert.Equal(t, g.FundedAddress(), stx.Txn.Sender.String())
	assert.Equal(t, onboardingNote, string(stx.Txn.Note))
}

func TestPayout_NetworkFailures(t *testing.T) {
	dest := crypto.GenerateAccount().Address.String()
	cases := map[string]*fakeNode{
		"balance": {balanceErr: errors.New("dial tcp: refused")},
		"submit":  {balance: 10_000_000, submitErr: errors.New("503")},
		"confirm": {balance: 10_000_000, waitErr: context.DeadlineExceeded},
	}
	for name, node := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewPaymentGateway(node, fundedMnemonic(t), 4)
			_, err := g.Payout(context.Background(), dest, half)
			assert.ErrorIs(t, err, domain.ErrGatewayNetwork)
		})
	}
}

func TestBalance(t *testing.T) {
	g := NewPaymentGateway(&fakeNode{balance: 2_500_000}, fundedMnemonic(t), 4)
	balance, err := g.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("2.5")), balance.String())
}

func signedBadge(t *testing.T, signer crypto.Account, url string, total uint64) []byte {
	t.Helper()
	node := &fakeNode{}
	params, _ := node.SuggestedParams(context.Background())
	addr := signer.Address.String()
	txn, err := transaction.MakeAssetCreateTxn(addr, nil, params, total, 0, false,
		addr, "", "", "", "GS-2025", "Getting Started 2025", url, "")
	require.NoError(t, err)
	_, stx, err := crypto.SignTransaction(signer.PrivateKey, txn)
	require.NoError(t, err)
	return stx
}

func TestMint_Success(t *testing.T) {
	recipient := crypto.GenerateAccount()
	node := &fakeNode{assetIndex: 4242}
	m := NewMinter(node, 4)
	proof := signedBadge(t, recipient, "ipfs://meta", 1)

	receipt, err := m.Mint(context.Background(), usecase.MintRequest{
		Milestone:   10,
		Year:        2025,
		MetadataRef: "ipfs://meta",
		RecipientID: recipient.Address.String(),
		AuthProof:   proof,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4242, receipt.BadgeID)
	require.Len(t, node.submitted, 1)
	assert.Equal(t, proof, node.submitted[0])
}

func TestMint_AcceptsBase64Proof(t *testing.T) {
	recipient := crypto.GenerateAccount()
	node := &fakeNode{assetIndex: 7}
	proof := signedBadge(t, recipient, "ipfs://meta", 1)

	_, err := NewMinter(node, 4).Mint(context.Background(), usecase.MintRequest{
		MetadataRef: "ipfs://meta",
		RecipientID: recipient.Address.String(),
		AuthProof:   []byte(base64.StdEncoding.EncodeToString(proof)),
	})
	require.NoError(t, err)
	assert.Equal(t, proof, node.submitted[0])
}

func TestMint_RejectsMismatchedProof(t *testing.T) {
	recipient := crypto.GenerateAccount()
	other := crypto.GenerateAccount()

	cases := []struct {
		name  string
		proof []byte
	}{
		{"garbage", []byte("!!not a txn!!")},
		{"wrong sender", signedBadge(t, other, "ipfs://meta", 1)},
		{"wrong url", signedBadge(t, recipient, "ipfs://other", 1)},
		{"fungible", signedBadge(t, recipient, "ipfs://meta", 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node := &fakeNode{assetIndex: 1}
			_, err := NewMinter(node, 4).Mint(context.Background(), usecase.MintRequest{
				MetadataRef: "ipfs://meta",
				RecipientID: recipient.Address.String(),
				AuthProof:   tc.proof,
			})
			assert.ErrorIs(t, err, domain.ErrMintService)
			assert.Empty(t, node.submitted)
		})
	}
}

func TestMint_SubmitFailure(t *testing.T) {
	recipient := crypto.GenerateAccount()
	node := &fakeNode{submitErr: errors.New("overspend")}

	_, err := NewMinter(node, 4).Mint(context.Background(), usecase.MintRequest{
		MetadataRef: "ipfs://meta",
		RecipientID: recipient.Address.String(),
		AuthProof:   signedBadge(t, recipient, "ipfs://meta", 1),
	})
	assert.ErrorIs(t, err, domain.ErrMintService)
}
