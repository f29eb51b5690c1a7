package wire

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrMalformedResult = errors.New("malformed authorization result")

// EncodeResult renders res as the Authorize response payload.
func EncodeResult(res assertion.Result) *structpb.Struct {
	fields := map[string]*structpb.Value{
		common.ResultCodeKey: structpb.NewStringValue(common.ResultCanceled),
	}
	if res.Approved {
		fields[common.ResultCodeKey] = structpb.NewStringValue(common.ResultOK)
		fields[common.AuthUsernameKey] = structpb.NewStringValue(res.Username)
		fields[common.AuthNicknameKey] = structpb.NewStringValue(res.Nickname)
	}
	return &structpb.Struct{Fields: fields}
}

// DecodeResult parses an Authorize response. An OK result must carry a
// username; a missing nickname falls back to the username.
func DecodeResult(s *structpb.Struct) (assertion.Result, error) {
	if s == nil {
		return assertion.Result{}, ErrMalformedResult
	}

	code := s.GetFields()[common.ResultCodeKey].GetStringValue()
	switch code {
	case common.ResultCanceled:
		return assertion.Deny(), nil
	case common.ResultOK:
		username := s.GetFields()[common.AuthUsernameKey].GetStringValue()
		if username == "" {
			return assertion.Result{}, fmt.Errorf("%w: missing %s", ErrMalformedResult, common.AuthUsernameKey)
		}
		nickname := s.GetFields()[common.AuthNicknameKey].GetStringValue()
		if nickname == "" {
			nickname = username
		}
		return assertion.Approve(username, nickname), nil
	default:
		return assertion.Result{}, fmt.Errorf("%w: result code %q", ErrMalformedResult, code)
	}
}
