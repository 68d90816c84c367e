package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/ini.v1"
)

var ErrProfileNotFound = errors.New("profile not found")

const (
	profilePrefix    = "profile "
	ssoSessionPrefix = "sso-session "
)

// Profile is the part of an AWS shared-config profile the collector reports on.
type Profile struct {
	Name          string
	Region        string
	RoleARN       string
	SourceProfile string
	SSO           bool
	StaticKeys    bool
}

type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewProfileRegistry merges the given shared config and credentials files.
// Missing files are skipped.
func NewProfileRegistry(paths ...string) (ProfileRegistry, error) {
	if len(paths) == 0 {
		return nil, errors.New("no profile files given")
	}
	sources := make([]any, 0, len(paths)-1)
	for _, p := range paths[1:] {
		sources = append(sources, p)
	}
	cfg, err := ini.LooseLoad(paths[0], sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS profiles: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

// DefaultProfilePaths returns the shared config and credentials files,
// honouring AWS_CONFIG_FILE and AWS_SHARED_CREDENTIALS_FILE.
func DefaultProfilePaths() []string {
	home, _ := os.UserHomeDir()
	configFile := os.Getenv("AWS_CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join(home, ".aws", "config")
	}
	credentialsFile := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = filepath.Join(home, ".aws", "credentials")
	}
	return []string{configFile, credentialsFile}
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		name, ok := profileName(section.Name())
		if !ok || slices.Contains(profiles, name) {
			continue
		}
		profiles = append(profiles, name)
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	var sections []*ini.Section
	for _, candidate := range []string{profilePrefix + name, name} {
		if s, err := r.cfg.GetSection(candidate); err == nil {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	p := &Profile{Name: name}
	for _, s := range sections {
		if v := s.Key("region").String(); v != "" {
			p.Region = v
		}
		if v := s.Key("role_arn").String(); v != "" {
			p.RoleARN = v
		}
		if v := s.Key("source_profile").String(); v != "" {
			p.SourceProfile = v
		}
		if s.HasKey("sso_session") || s.HasKey("sso_start_url") {
			p.SSO = true
		}
		if s.HasKey("aws_access_key_id") {
			p.StaticKeys = true
		}
	}
	return p, nil
}

// profileName maps a section name to a profile name. In the config file
// profiles other than default carry a "profile " prefix; the credentials
// file uses bare names.
func profileName(section string) (string, bool) {
	switch {
	case section == ini.DefaultSection:
		return "", false
	case strings.HasPrefix(section, ssoSessionPrefix):
		return "", false
	case strings.HasPrefix(section, profilePrefix):
		return strings.TrimSpace(strings.TrimPrefix(section, profilePrefix)), true
	default:
		return section, true
	}
}
