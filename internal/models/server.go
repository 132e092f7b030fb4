package models

import "time"

// Server lifecycle states. A server is publicly visible only while active.
// Rejection is a hard delete, not a stored state.
const (
	ServerStatusPending = "pending"
	ServerStatusActive  = "active"
)

// Server is a published or pending ACP server directory entry.
type Server struct {
	ID                string   `bson:"_id,omitempty" json:"id,omitempty"`
	Slug              string   `bson:"slug" json:"slug"`
	Name              string   `bson:"name" json:"name"`
	Description       string   `bson:"description" json:"description"`
	Website           string   `bson:"website,omitempty" json:"website,omitempty"`
	GithubURL         string   `bson:"github_url,omitempty" json:"githubUrl,omitempty"`
	LogoURL           string   `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	LogoKey           string   `bson:"logo_key,omitempty" json:"logoKey,omitempty"` // S3 key of the processed logo
	PrimaryCategoryID string   `bson:"primary_category" json:"primaryCategoryId"`
	Tags              []string `bson:"tags" json:"tags"`
	ProtocolSupport   []string `bson:"protocol_support" json:"protocolSupport"`
	APIEndpoint       string   `bson:"api_endpoint,omitempty" json:"apiEndpoint,omitempty"`
	APIKeyRequired    bool     `bson:"api_key_required" json:"apiKeyRequired"`

	SubmitterName    string `bson:"submitter_name,omitempty" json:"submitterName,omitempty"`
	SubmitterEmail   string `bson:"submitter_email,omitempty" json:"submitterEmail,omitempty"`
	SubmitterCompany string `bson:"submitter_company,omitempty" json:"submitterCompany,omitempty"`

	Status   string `bson:"status" json:"status"`
	Tier     Tier   `bson:"tier" json:"tier"`
	TierRank int    `bson:"tier_rank" json:"-"` // Always Tier.Rank(); persisted for sorting
	Featured bool   `bson:"featured" json:"featured"`
	Verified bool   `bson:"verified" json:"verified"`

	// Community metrics used by the ranking chain.
	Stars     int `bson:"stars" json:"stars"`
	Downloads int `bson:"downloads" json:"downloads"`

	// Premium feature flags, driven by the subscription tier.
	CustomProfile    bool `bson:"custom_profile" json:"customProfile"`
	LeadGeneration   bool `bson:"lead_generation" json:"leadGeneration"`
	AnalyticsEnabled bool `bson:"analytics_enabled" json:"analyticsEnabled"`

	Documentation string `bson:"documentation,omitempty" json:"documentation,omitempty"`
	Examples      string `bson:"examples,omitempty" json:"examples,omitempty"`
	Installation  string `bson:"installation,omitempty" json:"installation,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	ApprovedAt  *time.Time `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
}
