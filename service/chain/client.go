package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
)

var ErrTxReverted = errors.New("transaction reverted")

type ClientCfg struct {
	RpcUrl string
	// hex-encoded market operator key, used to sign transfer transactions
	OperatorKey string
}

type Client interface {
	Call(bCtx.Ctx, common.Address, abi.ABI, string, ...interface{}) ([]interface{}, error)
	Transact(bCtx.Ctx, common.Address, abi.ABI, string, ...interface{}) error
	Operator() common.Address
}

type clientImpl struct {
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	operator common.Address
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": cfg.RpcUrl,
		}).Error("failed to dial rpc")
		return nil, err
	}
	key, err := crypto.HexToECDSA(cfg.OperatorKey)
	if err != nil {
		ctx.WithField("err", err).Error("failed to parse operator key")
		return nil, err
	}
	return &clientImpl{
		client:   client,
		key:      key,
		operator: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (c *clientImpl) Operator() common.Address {
	return c.operator
}

func (c *clientImpl) Call(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	res, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		ctx.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithField("err", err).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}

// Transact submits a state-changing call signed by the operator key and
// waits for it to be mined.
func (c *clientImpl) Transact(ctx bCtx.Ctx, addr common.Address, _abi abi.ABI, method string, params ...interface{}) error {
	chainId, err := c.client.ChainID(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("client.ChainID failed")
		return err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, chainId)
	if err != nil {
		ctx.WithField("err", err).Error("failed to build transactor")
		return err
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(addr, _abi, c.client, c.client, c.client)
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("contract.Transact failed")
		return err
	}
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"txHash": tx.Hash().Hex(),
			"err":    err,
		}).Error("bind.WaitMined failed")
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		ctx.WithField("txHash", tx.Hash().Hex()).Error("transaction reverted")
		return ErrTxReverted
	}
	return nil
}

// ToTokenId parses a decimal token id into the uint256 the contracts
// expect.
func ToTokenId(id string) (*big.Int, bool) {
	return new(big.Int).SetString(id, 10)
}
