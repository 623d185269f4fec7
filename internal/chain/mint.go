package chain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
)

// Minter submits the recipient-signed asset creation transaction and reports the
// created asset index as the badge id.
type Minter struct {
	node   Node
	rounds uint64
}

func NewMinter(node Node, rounds uint64) *Minter {
	return &Minter{node: node, rounds: rounds}
}

func (m *Minter) Mint(ctx context.Context, req usecase.MintRequest) (domain.MintReceipt, error) {
	raw, stx, err := decodeSignedTxn(req.AuthProof)
	if err != nil {
		return domain.MintReceipt{}, fmt.Errorf("%w: %v", domain.ErrMintService, err)
	}
	if err := checkBadgeTxn(stx, req); err != nil {
		return domain.MintReceipt{}, fmt.Errorf("%w: %v", domain.ErrMintService, err)
	}

	txID, err := m.node.Submit(ctx, raw)
	if err != nil {
		return domain.MintReceipt{}, fmt.Errorf("%w: submit asset create: %v", domain.ErrMintService, err)
	}
	confirmed, err := m.node.WaitForConfirmation(ctx, txID, m.rounds)
	if err != nil {
		return domain.MintReceipt{}, fmt.Errorf("%w: confirm %s: %v", domain.ErrMintService, txID, err)
	}
	if confirmed.AssetIndex == 0 {
		return domain.MintReceipt{}, fmt.Errorf("%w: %s confirmed without an asset index", domain.ErrMintService, txID)
	}

	return domain.MintReceipt{BadgeID: confirmed.AssetIndex, Round: confirmed.ConfirmedRound}, nil
}

// decodeSignedTxn accepts raw msgpack or its base64 text form.
func decodeSignedTxn(proof []byte) ([]byte, types.SignedTxn, error) {
	var stx types.SignedTxn
	if len(proof) == 0 {
		return nil, stx, fmt.Errorf("empty signed transaction")
	}
	if err := msgpack.Decode(proof, &stx); err == nil && stx.Txn.Type != "" {
		return proof, stx, nil
	}

	raw, err := base64.StdEncoding.DecodeString(string(proof))
	if err != nil {
		return nil, stx, fmt.Errorf("signed transaction is neither msgpack nor base64")
	}
	stx = types.SignedTxn{}
	if err := msgpack.Decode(raw, &stx); err != nil {
		return nil, stx, fmt.Errorf("decode signed transaction: %w", err)
	}
	return raw, stx, nil
}

func checkBadgeTxn(stx types.SignedTxn, req usecase.MintRequest) error {
	txn := stx.Txn
	switch {
	case txn.Type != types.AssetConfigTx:
		return fmt.Errorf("expected %s transaction, got %q", types.AssetConfigTx, txn.Type)
	case txn.ConfigAsset != 0:
		return fmt.Errorf("transaction reconfigures asset %d instead of creating one", txn.ConfigAsset)
	case txn.Sender.String() != req.RecipientID:
		return fmt.Errorf("transaction sender %s is not the recipient", txn.Sender)
	case stx.Sig == (types.Signature{}) && stx.Msig.Blank() && stx.Lsig.Blank():
		return fmt.Errorf("transaction is not signed")
	case txn.AssetParams.URL != req.MetadataRef:
		return fmt.Errorf("asset url %q does not match badge metadata %q", txn.AssetParams.URL, req.MetadataRef)
	case txn.AssetParams.Total != 1 || txn.AssetParams.Decimals != 0:
		return fmt.Errorf("badge must be a single indivisible unit")
	}
	return nil
}
