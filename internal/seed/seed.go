// Package seed loads the initial category taxonomy and a handful of sample
// directory entries. Running it repeatedly refreshes the same records.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/services"
)

type sampleServer struct {
	Slug            string
	Name            string
	Description     string
	Website         string
	GithubURL       string
	LogoURL         string
	CategorySlug    string
	Tags            []string
	ProtocolSupport []string
	Featured        bool
	Verified        bool
	Stars           int
	Downloads       int
	Documentation   string
	Examples        string
	Installation    string
}

// Run seeds the database. Existing records with the same slugs are updated in
// place.
func Run(ctx context.Context, database *mongo.Database, categories services.ICategoryService) error {
	log.Println("Starting database seed...")

	categoryIDs := map[string]string{}
	for _, c := range seedCategories() {
		saved, err := categories.Upsert(ctx, &c)
		if err != nil {
			return err
		}
		categoryIDs[saved.Slug] = saved.ID
		log.Printf("Seeded category: %s", saved.Name)
	}

	for _, s := range seedServers() {
		categoryID, ok := categoryIDs[s.CategorySlug]
		if !ok {
			log.Printf("Skipping sample server %s: unknown category %s", s.Slug, s.CategorySlug)
			continue
		}
		if err := upsertServer(ctx, database, s, categoryID); err != nil {
			return err
		}
		log.Printf("Seeded server: %s", s.Name)
	}

	log.Println("Database seeding completed.")
	return nil
}

func upsertServer(ctx context.Context, database *mongo.Database, s sampleServer, categoryID string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":             s.Name,
			"description":      s.Description,
			"website":          s.Website,
			"github_url":       s.GithubURL,
			"logo_url":         s.LogoURL,
			"primary_category": categoryID,
			"tags":             s.Tags,
			"protocol_support": s.ProtocolSupport,
			"status":           models.ServerStatusActive,
			"featured":         s.Featured,
			"verified":         s.Verified,
			"stars":            s.Stars,
			"downloads":        s.Downloads,
			"documentation":    s.Documentation,
			"examples":         s.Examples,
			"installation":     s.Installation,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"_id":          uuid.NewString(),
			"slug":         s.Slug,
			"tier":         models.TierFree,
			"tier_rank":    models.TierFree.Rank(),
			"created_at":   now,
			"published_at": now,
		},
	}

	_, err := database.Collection("servers").UpdateOne(ctx,
		bson.M{"slug": s.Slug}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to seed server %s: %w", s.Slug, err)
	}
	return nil
}

func seedCategories() []models.Category {
	return []models.Category{
		// Core infrastructure
		{
			Name:        "Agent Infrastructure & APIs",
			Slug:        "agent-infrastructure-apis",
			Description: "Core infrastructure for building and deploying AI agents, including APIs, frameworks, and foundational tools.",
			Icon:        "⚙️",
			Color:       "#3b82f6",
			SortOrder:   1,
		},
		{
			Name:        "Data, Intelligence & Automation",
			Slug:        "data-intelligence-automation",
			Description: "Data processing, machine learning, and automation tools for intelligent agent behavior.",
			Icon:        "🧠",
			Color:       "#8b5cf6",
			SortOrder:   2,
		},
		{
			Name:        "Security, Identity & Trust",
			Slug:        "security-identity-trust",
			Description: "Security frameworks, identity management, and trust mechanisms for secure agent interactions.",
			Icon:        "🔒",
			Color:       "#ef4444",
			SortOrder:   3,
		},
		{
			Name:        "Commerce & Transaction Layer",
			Slug:        "commerce-transaction-layer",
			Description: "Payment processing, transaction management, and commerce-specific agent capabilities.",
			Icon:        "💳",
			Color:       "#10b981",
			SortOrder:   4,
		},
		// Experience and coordination
		{
			Name:        "CMS & Content Agents",
			Slug:        "cms-content-agents",
			Description: "Content management systems and agents for content creation, curation, and publishing.",
			Icon:        "📝",
			Color:       "#f59e0b",
			SortOrder:   5,
		},
		{
			Name:        "Design, Marketing & Creative Agents",
			Slug:        "design-marketing-creative-agents",
			Description: "Design tools, marketing automation, and creative AI agents for visual and creative tasks.",
			Icon:        "🎨",
			Color:       "#ec4899",
			SortOrder:   6,
		},
		{
			Name:        "Productivity & Workflow Agents",
			Slug:        "productivity-workflow-agents",
			Description: "Productivity tools and workflow automation agents for business processes.",
			Icon:        "⚡",
			Color:       "#06b6d4",
			SortOrder:   7,
		},
		{
			Name:        "Collaboration & Governance",
			Slug:        "collaboration-governance",
			Description: "Collaboration platforms, governance frameworks, and team coordination agents.",
			Icon:        "🤝",
			Color:       "#84cc16",
			SortOrder:   8,
		},
		// Vertical economies
		{
			Name:        "Banking & Financial Agents",
			Slug:        "banking-financial-agents",
			Description: "Specialized agents for banking, financial services, and fintech applications.",
			Icon:        "🏦",
			Color:       "#6366f1",
			SortOrder:   9,
		},
		{
			Name:        "Insurance & Risk Agents",
			Slug:        "insurance-risk-agents",
			Description: "Insurance processing, risk assessment, and actuarial agents.",
			Icon:        "🛡️",
			Color:       "#f97316",
			SortOrder:   10,
		},
		{
			Name:        "E-Commerce & Retail Agents",
			Slug:        "ecommerce-retail-agents",
			Description: "E-commerce platforms, retail automation, and commerce-specific agents.",
			Icon:        "🛒",
			Color:       "#14b8a6",
			SortOrder:   11,
		},
		{
			Name:        "Legal & Compliance Agents",
			Slug:        "legal-compliance-agents",
			Description: "Legal research, compliance monitoring, and regulatory agents.",
			Icon:        "⚖️",
			Color:       "#64748b",
			SortOrder:   12,
		},
	}
}

func seedServers() []sampleServer {
	return []sampleServer{
		{
			Slug:            "stripe-acp-server",
			Name:            "Stripe ACP Server",
			Description:     "Official Stripe integration for Agentic Commerce Protocol. Process payments, manage subscriptions, and handle commerce transactions through AI agents.",
			Website:         "https://stripe.com",
			GithubURL:       "https://github.com/stripe/acp-server",
			LogoURL:         "https://stripe.com/img/v3/home/social.png",
			CategorySlug:    "commerce-transaction-layer",
			Tags:            []string{"payments", "subscriptions", "commerce", "api"},
			ProtocolSupport: []string{"ACP v0.3", "MCP"},
			Featured:        true,
			Verified:        true,
			Stars:           2847,
			Downloads:       15420,
			Documentation:   "Complete documentation for integrating Stripe payments with AI agents using ACP.",
			Examples:        "Examples for subscription management, one-time payments, and refunds.",
			Installation:    "npm install @stripe/acp-server",
		},
		{
			Slug:            "openai-whisper-acp",
			Name:            "OpenAI Whisper ACP",
			Description:     "Speech-to-text agent using OpenAI's Whisper model. Convert audio files and real-time speech to text with high accuracy.",
			Website:         "https://openai.com/research/whisper",
			GithubURL:       "https://github.com/openai/whisper",
			LogoURL:         "https://openai.com/content/images/2022/05/openai-avatar.png",
			CategorySlug:    "data-intelligence-automation",
			Tags:            []string{"speech-to-text", "audio", "ml", "transcription"},
			ProtocolSupport: []string{"ACP v0.3", "MCP", "LangGraph"},
			Featured:        true,
			Verified:        true,
			Stars:           45672,
			Downloads:       89234,
			Documentation:   "Comprehensive guide for audio processing and speech recognition.",
			Examples:        "Examples for real-time transcription, batch processing, and multi-language support.",
			Installation:    "pip install openai-whisper-acp",
		},
		{
			Slug:            "github-copilot-acp",
			Name:            "GitHub Copilot ACP",
			Description:     "AI-powered coding assistant integrated with ACP. Get intelligent code suggestions, refactoring, and debugging assistance.",
			Website:         "https://github.com/features/copilot",
			GithubURL:       "https://github.com/github/copilot-acp",
			LogoURL:         "https://github.githubassets.com/images/modules/site/copilot/copilot-logo.png",
			CategorySlug:    "agent-infrastructure-apis",
			Tags:            []string{"coding", "ai-assistant", "development", "ide"},
			ProtocolSupport: []string{"ACP v0.3", "MCP"},
			Featured:        true,
			Verified:        true,
			Stars:           12345,
			Downloads:       67890,
			Documentation:   "Developer guide for integrating Copilot with ACP workflows.",
			Examples:        "Code completion, refactoring, and debugging examples.",
			Installation:    "Install via VS Code extension or GitHub CLI",
		},
		{
			Slug:            "anthropic-claude-acp",
			Name:            "Anthropic Claude ACP",
			Description:     "Advanced AI assistant for complex reasoning, analysis, and creative tasks. Built for safety and helpfulness.",
			Website:         "https://anthropic.com/claude",
			GithubURL:       "https://github.com/anthropics/claude-acp",
			LogoURL:         "https://anthropic.com/assets/images/claude-avatar.png",
			CategorySlug:    "data-intelligence-automation",
			Tags:            []string{"llm", "reasoning", "analysis", "safety"},
			ProtocolSupport: []string{"ACP v0.3", "MCP", "LangGraph"},
			Featured:        true,
			Verified:        true,
			Stars:           9876,
			Downloads:       54321,
			Documentation:   "Complete API reference and integration guide for Claude.",
			Examples:        "Examples for text analysis, code generation, and creative writing.",
			Installation:    "pip install anthropic-claude-acp",
		},
		{
			Slug:            "slack-bot-acp",
			Name:            "Slack Bot ACP",
			Description:     "Enterprise communication agent for Slack. Automate workflows, manage notifications, and integrate with business tools.",
			Website:         "https://api.slack.com/bot-users",
			GithubURL:       "https://github.com/slackapi/slack-bot-acp",
			LogoURL:         "https://a.slack-edge.com/80588/marketing/img/icons/icon_slack_hash_colored.png",
			CategorySlug:    "collaboration-governance",
			Tags:            []string{"slack", "communication", "automation", "workflow"},
			ProtocolSupport: []string{"ACP v0.3", "MCP"},
			Featured:        false,
			Verified:        true,
			Stars:           5432,
			Downloads:       32109,
			Documentation:   "Slack bot development and integration guide.",
			Examples:        "Examples for message automation, workflow triggers, and team coordination.",
			Installation:    "npm install slack-bot-acp",
		},
	}
}
