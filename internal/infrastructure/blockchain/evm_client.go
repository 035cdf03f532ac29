package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// Function selectors, first four bytes of the keccak hash of the
	// canonical signature.
	selectorBalanceOf  = crypto.Keccak256([]byte("balanceOf(address)"))[:4]
	selectorUsedNonces = crypto.Keccak256([]byte("usedNonces(bytes32)"))[:4]
)

// caller is the subset of ethclient used by EVMClient, extracted so unit
// tests can run without RPC sockets.
type caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// EVMClient wraps a JSON-RPC connection to a single EVM chain.
type EVMClient struct {
	client  caller
	chainID *big.Int
	rpcURL  string
}

// NewEVMClient dials an RPC endpoint and verifies it responds.
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		client.Close()
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithCaller builds a client over an injected caller, for tests.
func NewEVMClientWithCaller(chainID *big.Int, c caller) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{client: c, chainID: chainID}
}

// ChainID returns the connected chain's ID.
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// GetTokenBalance reads the ERC20 balance of an address in token base units.
func (c *EVMClient) GetTokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
	token := common.HexToAddress(tokenAddress)
	owner := common.HexToAddress(ownerAddress)

	data := append(append([]byte{}, selectorBalanceOf...), common.LeftPadBytes(owner.Bytes(), 32)...)

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// IsMessageUsed reports whether a burn message has already been minted on
// this chain. The transmitter keeps a nonzero slot per consumed message.
func (c *EVMClient) IsMessageUsed(ctx context.Context, messageTransmitter, messageHash string) (bool, error) {
	transmitter := common.HexToAddress(messageTransmitter)
	hash := common.HexToHash(messageHash)

	data := append(append([]byte{}, selectorUsedNonces...), hash.Bytes()...)

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &transmitter, Data: data}, nil)
	if err != nil {
		return false, err
	}
	return new(big.Int).SetBytes(result).Sign() != 0, nil
}

// GetTransactionReceipt fetches the receipt for a transaction hash.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
}

// GetBlockNumber returns the latest block number.
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// Close releases the RPC connection.
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
