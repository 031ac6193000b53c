package jmap

import (
	"context"
	"encoding/json"

	"golang.org/x/text/language"

	"maskctl/internal/maskedemail"
	"maskctl/internal/services"
)

const callID = "a"

// MaskedEmails reads and updates masked e-mail records for the primary
// masked e-mail account.
type MaskedEmails struct {
	client *Client
	tag    language.Tag
}

// NewMaskedEmails wraps client. locale selects the collation used to order
// records by address; an unparsable locale falls back to undetermined.
func NewMaskedEmails(client *Client, locale string) *MaskedEmails {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &MaskedEmails{client: client, tag: tag}
}

type getArgs struct {
	AccountID string `json:"accountId"`
}

type getResult struct {
	List     []maskedemail.Record `json:"list"`
	NotFound []string             `json:"notFound"`
}

type setArgs struct {
	AccountID string                           `json:"accountId"`
	Update    map[string]maskedemail.FieldMap `json:"update"`
}

// Get returns every record sorted by e-mail address.
func (m *MaskedEmails) Get(ctx context.Context) ([]maskedemail.Record, error) {
	raw, err := m.invoke(ctx, "MaskedEmail/get", func(account string) any {
		return getArgs{AccountID: account}
	})
	if err != nil {
		return nil, err
	}
	var result getResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "MaskedEmail/get", "decode list", err)
	}
	records := result.List
	if records == nil {
		records = []maskedemail.Record{}
	}
	maskedemail.SortByEmail(records, m.tag)
	return records, nil
}

// Set submits update in a single MaskedEmail/set call.
func (m *MaskedEmails) Set(ctx context.Context, update maskedemail.Changeset) (*SetResult, error) {
	raw, err := m.invoke(ctx, "MaskedEmail/set", func(account string) any {
		return setArgs{AccountID: account, Update: update}
	})
	if err != nil {
		return nil, err
	}
	var result SetResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "MaskedEmail/set", "decode result", err)
	}
	return &result, nil
}

func (m *MaskedEmails) invoke(ctx context.Context, method string, args func(account string) any) (json.RawMessage, error) {
	account, err := m.client.PrimaryAccount(ctx, MaskedEmailURI)
	if err != nil {
		return nil, err
	}
	inv, err := NewInvocation(method, args(account), callID)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", method, "encode", err)
	}
	resp, err := m.client.Call(ctx, Request{
		Using:       []string{CoreURI, MaskedEmailURI},
		MethodCalls: []Invocation{inv},
	})
	if err != nil {
		return nil, err
	}
	raw, err := resp.Result(callID)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", method, "", err)
	}
	return raw, nil
}
