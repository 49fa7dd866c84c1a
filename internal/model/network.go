// Package model defines domain models for the vault indexer.
package model

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// Network names the chain the indexer runs against.
type Network string

var (
	// Mutinynet is the custom 30-second-block signet run by Mutiny.
	Mutinynet Network = "mutinynet"
	// Signet is the default public signet.
	Signet Network = "signet"
	// Regtest is a local regression test chain.
	Regtest Network = "regtest"
)

// mutinynetChallenge is the signet challenge script of the Mutiny signet.
// The derived message-start magic is a5df2dcb.
var mutinynetChallenge = []byte{
	0x51, 0x21, 0x02, 0xf7, 0x56, 0x1d, 0x20, 0x8d, 0xd9, 0xae, 0x99,
	0xbf, 0x49, 0x72, 0x73, 0xe1, 0x6f, 0x38, 0x9b, 0xdb, 0xd6, 0xc4,
	0x74, 0x2d, 0xdb, 0x8e, 0x6b, 0x21, 0x6e, 0x64, 0xfa, 0x29, 0x28,
	0xad, 0x8f, 0x51, 0xae,
}

var mutinynetParams = chaincfg.CustomSignetParams(mutinynetChallenge, nil)

// ParseNetwork validates a user-supplied network name.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(s) {
	case "mutinynet", "mutiny":
		return Mutinynet, nil
	case "signet":
		return Signet, nil
	case "regtest":
		return Regtest, nil
	default:
		return "", fmt.Errorf("unsupported network %q", s)
	}
}

// ChainParams returns the btcd chain parameters for the network.
func (n Network) ChainParams() (*chaincfg.Params, error) {
	switch n {
	case Mutinynet:
		return &mutinynetParams, nil
	case Signet:
		return &chaincfg.SigNetParams, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", n)
	}
}

// Magic returns the message-start bytes sent at the front of every P2P frame.
func (n Network) Magic() (wire.BitcoinNet, error) {
	params, err := n.ChainParams()
	if err != nil {
		return 0, err
	}
	return params.Net, nil
}

// ExplorerTxURL builds a block explorer link for a transaction id.
func (n Network) ExplorerTxURL(txid string) string {
	switch n {
	case Mutinynet:
		return "https://mutinynet.com/tx/" + txid
	case Signet:
		return "https://mempool.space/signet/tx/" + txid
	default:
		return txid
	}
}
