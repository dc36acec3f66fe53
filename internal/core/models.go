package core

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActionKind is a logical engagement action, independent of how it is
// executed.
type ActionKind string

const (
	KindLike           ActionKind = "like"
	KindVote           ActionKind = "vote"
	KindCreatePost     ActionKind = "createPost"
	KindCreatePoll     ActionKind = "createPoll"
	KindCreateCampaign ActionKind = "createCampaign"
	KindRedeemPoints   ActionKind = "redeemPoints"
)

// KnownKinds is the closed set of actions the encoder understands.
var KnownKinds = []ActionKind{
	KindLike, KindVote, KindCreatePost, KindCreatePoll,
	KindCreateCampaign, KindRedeemPoints,
}

// Action is a fully specified intent. Only the fields relevant to Kind are
// set; the encoder validates the rest.
type Action struct {
	Kind ActionKind `json:"kind"`

	PostID      uint64 `json:"postId,omitempty"`
	OptionIndex uint8  `json:"optionIndex,omitempty"`

	Content    string   `json:"content,omitempty"`
	CampaignID uint64   `json:"campaignId,omitempty"`
	Options    []string `json:"options,omitempty"`

	// Wei amounts, converted from decimal input at the CLI boundary.
	RewardWei *big.Int `json:"rewardWei,omitempty"`
	BudgetWei *big.Int `json:"budgetWei,omitempty"`

	// Points for redeemPoints.
	Amount uint64 `json:"amount,omitempty"`
}

func LikeAction(postID uint64) Action {
	return Action{Kind: KindLike, PostID: postID}
}

func VoteAction(postID uint64, optionIndex uint8) Action {
	return Action{Kind: KindVote, PostID: postID, OptionIndex: optionIndex}
}

func CreatePostAction(content string, campaignID uint64) Action {
	return Action{Kind: KindCreatePost, Content: content, CampaignID: campaignID}
}

func CreatePollAction(content string, campaignID uint64, options []string) Action {
	return Action{Kind: KindCreatePoll, Content: content, CampaignID: campaignID, Options: options}
}

func CreateCampaignAction(rewardWei, budgetWei *big.Int) Action {
	return Action{Kind: KindCreateCampaign, RewardWei: rewardWei, BudgetWei: budgetWei}
}

func RedeemPointsAction(amount uint64) Action {
	return Action{Kind: KindRedeemPoints, Amount: amount}
}

// PendingAction is one queued entry. Append-only until flushed or cleared.
type PendingAction struct {
	Action   Action `json:"action"`
	QueuedAt int64  `json:"queuedAt"` // unix milliseconds
}

// Permission is the one-per-session delegation record. A new grant replaces
// any prior record atomically; there is never a merge.
type Permission struct {
	Scope       []ActionKind   `json:"scope"`
	SpendingCap *big.Int       `json:"spendingCap"` // wei, per Period
	Period      int64          `json:"period"`      // seconds
	GrantedAt   int64          `json:"grantedAt"`   // unix milliseconds
	Expiry      int64          `json:"expiry"`      // unix milliseconds
	Signer      common.Address `json:"signer"`

	// Context is the opaque authorization context returned by the wallet at
	// grant time, echoed back on every permissioned submission.
	Context json.RawMessage `json:"context,omitempty"`

	PendingActions []PendingAction `json:"pendingActions"`
}

// Expired reports whether the record is stale at the given instant.
func (p *Permission) Expired(now time.Time) bool {
	return now.UnixMilli() >= p.Expiry
}

// InScope reports whether kind is covered by the granted scope.
func (p *Permission) InScope(kind ActionKind) bool {
	for _, k := range p.Scope {
		if k == kind {
			return true
		}
	}
	return false
}

// PollOption belongs to exactly one Post. The option list is fixed at poll
// creation.
type PollOption struct {
	Text  string   `json:"text"`
	Votes *big.Int `json:"votes"`
}

// Post is a read-only projection of contract state. Counters are re-fetched,
// never incremented locally.
type Post struct {
	ID         uint64         `json:"id"`
	Author     common.Address `json:"author"`
	Content    string         `json:"content"`
	CampaignID *big.Int       `json:"campaignId"`
	LikeCount  *big.Int       `json:"likeCount"`
	TotalVotes *big.Int       `json:"totalVotes"`
	CreatedAt  *big.Int       `json:"createdAt"`

	Options []PollOption `json:"options,omitempty"`

	// Viewer-relative flags, populated only when the feed is synced for a
	// concrete address.
	Liked bool `json:"liked,omitempty"`
	Voted bool `json:"voted,omitempty"`
}

// IsPoll reports whether the post carries poll options.
func (p Post) IsPoll() bool {
	return len(p.Options) > 0
}

// Sponsored reports whether the post is linked to a campaign. Campaign id 0
// means unsponsored.
func (p Post) Sponsored() bool {
	return p.CampaignID != nil && p.CampaignID.Sign() > 0
}

// Campaign is the creation-side view of a sponsored budget. The contract
// derives the remaining budget; the client never tracks it.
type Campaign struct {
	RewardPerAction *big.Int `json:"rewardPerAction"` // wei
	Budget          *big.Int `json:"budget"`          // wei, attached as call value
}

// GrantRequest is what crosses the wallet boundary when asking for a
// delegated permission.
type GrantRequest struct {
	Signer           common.Address
	AllowedFunctions []string
	SpendingCap      *big.Int
	Period           time.Duration
	Expiry           time.Time
}

// TxRequest is a single submission. AuthContext, when present, asks the
// wallet to execute under the previously granted permission.
type TxRequest struct {
	From        common.Address
	To          common.Address
	Data        []byte
	Value       *big.Int
	AuthContext json.RawMessage
}
