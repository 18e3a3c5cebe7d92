package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"woofi/core/types"
	"woofi/crypto"
	"woofi/native/program"
	"woofi/native/woofi"
)

func (s *Server) handleSendTransaction(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "transaction parameter required", nil)
		return
	}
	var tx types.Transaction
	if err := json.Unmarshal(req.Params[0], &tx); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid transaction format", err.Error())
		return
	}
	receipt, err := s.node.ApplyTransaction(&tx)
	if err != nil {
		data := LedgerErrorData{Receipt: receipt}
		code := codeTxRejected
		if domain, ok := woofi.AsError(err); ok {
			code = codeLedgerError
			data.Code = uint32(domain.Code)
			data.Name = domain.Name
		}
		writeError(w, http.StatusUnprocessableEntity, req.ID, code, err.Error(), data)
		return
	}
	writeResult(w, req.ID, receipt)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "address parameter required", nil)
		return
	}
	var addrStr string
	if err := json.Unmarshal(req.Params[0], &addrStr); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address parameter", err.Error())
		return
	}
	addr, err := crypto.ParseAddress(addrStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode address", err.Error())
		return
	}
	account, err := s.node.GetAccount(addr.Array())
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to load account", err.Error())
		return
	}
	writeResult(w, req.ID, BalanceResponse{
		Address: bech(addr.Array()),
		Balance: account.Balance.String(),
		Nonce:   account.Nonce,
	})
}

func (s *Server) handleGetPlatform(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	platform, err := s.node.Platform()
	if err != nil {
		writeRecordError(w, req.ID, "platform", err)
		return
	}
	writeResult(w, req.ID, platformResult(platform))
}

func (s *Server) handleGetDog(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var query DogQuery
	if !decodeObjectParam(w, req, &query) {
		return
	}
	var addr [20]byte
	switch {
	case strings.TrimSpace(query.Address) != "":
		parsed, err := crypto.ParseAddress(query.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode address", err.Error())
			return
		}
		addr = parsed.Array()
	case query.Name != "":
		derived, err := woofi.DogAddress(query.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid dog name", err.Error())
			return
		}
		addr = derived
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "name or address required", nil)
		return
	}
	dog, err := s.node.Dog(addr)
	if err != nil {
		writeRecordError(w, req.ID, "dog", err)
		return
	}
	writeResult(w, req.ID, dogResult(addr, dog))
}

func (s *Server) handleGetDonation(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var query DonationQuery
	if !decodeObjectParam(w, req, &query) {
		return
	}
	var addr [20]byte
	switch {
	case strings.TrimSpace(query.Address) != "":
		parsed, err := crypto.ParseAddress(query.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode address", err.Error())
			return
		}
		addr = parsed.Array()
	case strings.TrimSpace(query.Donor) != "" && query.Timestamp != nil:
		donor, err := crypto.ParseAddress(query.Donor)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode donor", err.Error())
			return
		}
		derived, err := woofi.DonationAddress(donor.Array(), *query.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid donation seeds", err.Error())
			return
		}
		addr = derived
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "address or donor and timestamp required", nil)
		return
	}
	donation, err := s.node.Donation(addr)
	if err != nil {
		writeRecordError(w, req.ID, "donation", err)
		return
	}
	writeResult(w, req.ID, donationResult(addr, donation))
}

func (s *Server) handleDeriveAddresses(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var query DeriveQuery
	if len(req.Params) > 0 && !decodeObjectParam(w, req, &query) {
		return
	}
	result := AddressesResult{
		ProgramID:       bech(woofi.ProgramID),
		SystemProgramID: bech(woofi.SystemProgramID),
		Platform:        bech(woofi.PlatformAddress()),
	}
	if query.DogName != "" {
		dog, err := woofi.DogAddress(query.DogName)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid dog name", err.Error())
			return
		}
		result.Dog = bech(dog)
	}
	if strings.TrimSpace(query.Donor) != "" && query.Timestamp != nil {
		donor, err := crypto.ParseAddress(query.Donor)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to decode donor", err.Error())
			return
		}
		donation, err := woofi.DonationAddress(donor.Array(), *query.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid donation seeds", err.Error())
			return
		}
		result.Donation = bech(donation)
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleStateRoot(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, StateRootResult{Root: s.node.StateRoot().Hex(), ChainID: s.node.ChainID()})
}

func decodeObjectParam(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "parameter object required", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func writeRecordError(w http.ResponseWriter, id interface{}, kind string, err error) {
	switch {
	case errors.Is(err, program.ErrAccountNotInitialized):
		writeError(w, http.StatusNotFound, id, codeNotFound, kind+" not found", nil)
	case errors.Is(err, program.ErrAccountDiscriminator), errors.Is(err, program.ErrAccountOwner):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, "address does not hold a "+kind, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, "failed to load "+kind, err.Error())
	}
}
