// Package export implements the offline snapshot job: a bulk scan of stored
// progression serialized to JSON and uploaded to S3-compatible object
// storage. Online players are excluded so the export never shadows a live
// session's state.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/skillkeeper/internal/config"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/storage"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// Indirections over the AWS SDK so tests can intercept the upload without a
// network.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, in)
	}
)

// Snapshot is the exported document: the full registered skill set and one
// entry per stored player. Listing every skill lets consumers tell "skill at
// StartLevel" apart from "skill unknown to this server".
type Snapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	Skills     []string       `json:"skills"`
	Players    []PlayerExport `json:"players"`
}

// PlayerExport flattens one player state for external consumers
// (leaderboards, migrations).
type PlayerExport struct {
	UUID        uuid.UUID          `json:"uuid"`
	Mana        float64            `json:"mana"`
	SkillLevels map[string]int     `json:"skill_levels,omitempty"`
	SkillXp     map[string]float64 `json:"skill_xp,omitempty"`
	Modifiers   []ModifierExport   `json:"modifiers,omitempty"`
}

// ModifierExport is one active modifier in the export document.
type ModifierExport struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Target    string  `json:"target"`
	Value     float64 `json:"value"`
	Operation byte    `json:"operation"`
}

// Exporter runs the snapshot job.
type Exporter struct {
	repo     storage.Repository
	registry *registry.Registry
	cfg      *sc.Config
	log      logging.Logger
	now      func() time.Time
}

func NewExporter(repo storage.Repository, reg *registry.Registry, cfg *sc.Config, log logging.Logger) *Exporter {
	return &Exporter{
		repo:     repo,
		registry: reg,
		cfg:      cfg,
		log:      log.With("component", "export"),
		now:      time.Now,
	}
}

// Run scans storage and uploads the snapshot, returning the object key.
// skipModifiers trims the document for consumers that only need levels.
func (e *Exporter) Run(ctx context.Context, skipModifiers bool) (string, error) {
	states, err := e.repo.LoadStates(ctx, true, skipModifiers)
	if err != nil {
		return "", fmt.Errorf("bulk scan error: %w", err)
	}

	snapshot := e.buildSnapshot(states)

	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("snapshot marshal error: %w", err)
	}

	key := e.objectKey()
	if err := e.upload(ctx, key, body); err != nil {
		return "", err
	}

	e.log.Info(ctx, "snapshot exported", "key", key, "players", len(snapshot.Players), "bytes", len(body))
	return key, nil
}

func (e *Exporter) buildSnapshot(states []user.State) Snapshot {
	snapshot := Snapshot{
		ExportedAt: e.now(),
		Skills:     registeredSkillIDs(e.registry),
		Players:    make([]PlayerExport, 0, len(states)),
	}

	for _, state := range states {
		p := PlayerExport{UUID: state.UUID, Mana: state.Mana}

		if len(state.SkillLevels) > 0 {
			p.SkillLevels = make(map[string]int, len(state.SkillLevels))
			p.SkillXp = make(map[string]float64, len(state.SkillXp))
			for id, level := range state.SkillLevels {
				p.SkillLevels[id.String()] = level
			}
			for id, xp := range state.SkillXp {
				p.SkillXp[id.String()] = xp
			}
		}

		for _, m := range state.StatModifiers {
			p.Modifiers = append(p.Modifiers, exportModifier(m))
		}
		for _, m := range state.TraitModifiers {
			p.Modifiers = append(p.Modifiers, exportModifier(m))
		}
		sort.Slice(p.Modifiers, func(i, j int) bool {
			if p.Modifiers[i].Type != p.Modifiers[j].Type {
				return p.Modifiers[i].Type < p.Modifiers[j].Type
			}
			return p.Modifiers[i].Name < p.Modifiers[j].Name
		})

		snapshot.Players = append(snapshot.Players, p)
	}

	sort.Slice(snapshot.Players, func(i, j int) bool {
		return snapshot.Players[i].UUID.String() < snapshot.Players[j].UUID.String()
	})
	return snapshot
}

func registeredSkillIDs(reg *registry.Registry) []string {
	skills := reg.Skills()
	ids := make([]string, 0, len(skills))
	for _, s := range skills {
		ids = append(ids, s.ID.String())
	}
	sort.Strings(ids)
	return ids
}

func exportModifier(m modifier.Modifier) ModifierExport {
	return ModifierExport{
		Type:      string(m.Type),
		Name:      m.Name,
		Target:    m.Target.String(),
		Value:     m.Value,
		Operation: m.Operation.Code(),
	}
}

// objectKey buckets snapshots by date, one object per run.
func (e *Exporter) objectKey() string {
	d := e.now().UTC()
	return fmt.Sprintf("snapshots/%d/%02d/%02d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (e *Exporter) upload(ctx context.Context, key string, body []byte) error {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(e.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.cfg.S3RootUser,
			e.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return fmt.Errorf("aws config error: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(e.cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload error: %w", err)
	}
	return nil
}
