package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3link/internal/asset"
	"github.com/Mohsinsiddi/w3link/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransactor struct {
	msgs []contract.Message
	err  error
}

func (r *recordingTransactor) SendTransaction(_ context.Context, msg contract.Message) (common.Hash, error) {
	if r.err != nil {
		return common.Hash{}, r.err
	}
	r.msgs = append(r.msgs, msg)
	return common.BigToHash(big.NewInt(int64(len(r.msgs)))), nil
}

var alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")

func usdLending(t *testing.T) *contract.Descriptor {
	t.Helper()
	reg, err := contract.Build(31, asset.NewCatalog(), nil)
	require.NoError(t, err)
	d, err := reg.Get("USD-lending")
	require.NoError(t, err)
	return d
}

func TestSplitOptions(t *testing.T) {
	args, opts := contract.SplitOptions([]interface{}{alice, big.NewInt(5), contract.CallOptions{Gas: 9}})
	assert.Len(t, args, 2)
	assert.Equal(t, uint64(9), opts.Gas)

	args, opts = contract.SplitOptions([]interface{}{&contract.CallOptions{Value: big.NewInt(1)}})
	assert.Empty(t, args)
	assert.Equal(t, big.NewInt(1), opts.Value)

	args, opts = contract.SplitOptions([]interface{}{alice})
	assert.Len(t, args, 1)
	assert.Equal(t, contract.CallOptions{}, opts)

	var nilOpts *contract.CallOptions
	args, _ = contract.SplitOptions([]interface{}{nilOpts})
	assert.Empty(t, args)

	args, _ = contract.SplitOptions(nil)
	assert.Empty(t, args)
}

func TestInstanceTransact(t *testing.T) {
	tx := &recordingTransactor{}
	inst := contract.Bind(usdLending(t), tx, alice)
	assert.Equal(t, alice, inst.From())

	hash, err := inst.Transact(context.Background(), "mint", alice, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(1)), hash)

	require.Len(t, tx.msgs, 1)
	msg := tx.msgs[0]
	assert.Equal(t, alice, msg.From)
	assert.Equal(t, common.HexToAddress("0xD1A979EDE2c17FCD31800Bed859e5EC3DA178Cb9"), *msg.To)
	m, _ := inst.Method("mint")
	assert.Equal(t, m.ID, msg.Data[:4])
	assert.Len(t, msg.Data, 4+64)
	assert.Nil(t, msg.Value)
}

func TestInstanceTransactAppliesOptions(t *testing.T) {
	tx := &recordingTransactor{}
	inst := contract.Bind(usdLending(t), tx, alice)
	bob := common.HexToAddress("0xb0b")

	_, err := inst.Transact(context.Background(), "mintWithBTC", alice,
		&contract.CallOptions{Value: big.NewInt(7), Gas: 300000, GasPrice: big.NewInt(2), From: &bob})
	require.NoError(t, err)

	msg := tx.msgs[0]
	assert.Equal(t, bob, msg.From)
	assert.Equal(t, big.NewInt(7), msg.Value)
	assert.Equal(t, uint64(300000), msg.Gas)
	assert.Equal(t, big.NewInt(2), msg.GasPrice)
}

func TestInstanceTransactViewMethodStillSends(t *testing.T) {
	tx := &recordingTransactor{}
	inst := contract.Bind(usdLending(t), tx, alice)

	_, err := inst.Transact(context.Background(), "tokenPrice")
	require.NoError(t, err)
	assert.Len(t, tx.msgs, 1)
}

func TestInstanceTransactWrapsSubmissionError(t *testing.T) {
	boom := errors.New("insufficient funds")
	inst := contract.Bind(usdLending(t), &recordingTransactor{err: boom}, alice)

	_, err := inst.Transact(context.Background(), "tokenPrice")
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "USD-lending.tokenPrice")
}

func TestInstanceTransactBadArgs(t *testing.T) {
	tx := &recordingTransactor{}
	inst := contract.Bind(usdLending(t), tx, alice)

	_, err := inst.Transact(context.Background(), "mint", "not-an-address")
	assert.Error(t, err)
	assert.Empty(t, tx.msgs)
}

func TestBindAll(t *testing.T) {
	reg, err := contract.Build(31, asset.NewCatalog(), nil)
	require.NoError(t, err)

	instances := contract.BindAll(reg, &recordingTransactor{}, alice)
	assert.Len(t, instances, 4)
	for _, name := range []string{"BTC-token", "BTC-lending", "USD-token", "USD-lending"} {
		require.Contains(t, instances, name)
		assert.Equal(t, alice, instances[name].From())
	}
}
