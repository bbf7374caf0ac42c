// Package maven provides a version feed reading maven-metadata.xml from a
// Maven repository.
package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reactor/docsproxy/internal/core"
)

const (
	DefaultURL = "https://repo1.maven.org/maven2"
	name       = "maven"
)

func init() {
	core.Register(name, DefaultURL, func(baseURL string, client *core.Client) core.Feed {
		return New(baseURL, client)
	})
}

type Feed struct {
	baseURL string
	client  *core.Client
}

func New(baseURL string, client *core.Client) *Feed {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	return &Feed{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (f *Feed) Name() string {
	return name
}

type mavenMetadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// MetadataURL returns the maven-metadata.xml URL of an artifact.
func (f *Feed) MetadataURL(groupID, artifactID string) string {
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", f.baseURL, strings.ReplaceAll(groupID, ".", "/"), artifactID)
}

func (f *Feed) FetchVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	var meta mavenMetadata
	if err := f.client.GetXML(ctx, f.MetadataURL(groupID, artifactID), &meta); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Module: groupID + ":" + artifactID}
		}
		return nil, err
	}

	versions := make([]string, 0, len(meta.Versioning.Versions))
	for _, v := range meta.Versioning.Versions {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// ParseCoordinates splits "group:artifact[:version]". Malformed input
// yields empty strings.
func ParseCoordinates(coords string) (groupID, artifactID, version string) {
	parts := strings.Split(coords, ":")
	switch len(parts) {
	case 2:
		return parts[0], parts[1], ""
	case 3:
		return parts[0], parts[1], parts[2]
	default:
		return "", "", ""
	}
}
