package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

var _ Opener = (*Azure)(nil)

// Azure opens blobs in Azure Blob Storage.
type Azure struct {
	client *azblob.Client
}

// NewAzure creates an Azure accessor for location. Key is the storage account
// name and Secret its shared key; without a secret the client is anonymous.
// Endpoint overrides the service URL, which otherwise derives from the
// account name (from Key, or from an abfss:// host).
func NewAzure(location string, cfg Config) (*Azure, error) {
	account := cfg.Key
	if account == "" {
		_, _, parsed, err := ParseAzurePath(location)
		if err != nil {
			return nil, err
		}
		account = parsed
	}

	serviceURL := cfg.Endpoint
	if serviceURL == "" {
		if account == "" {
			return nil, fmt.Errorf("azure account name required for %q: pass a key or use abfss://container@account", location)
		}
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", account)
	} else {
		serviceURL = endpointURL(serviceURL)
	}

	if cfg.Key != "" && cfg.Secret != "" {
		cred, err := azblob.NewSharedKeyCredential(cfg.Key, cfg.Secret)
		if err != nil {
			return nil, fmt.Errorf("create shared key credential: %w", err)
		}
		client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure blob client: %w", err)
		}
		return &Azure{client: client}, nil
	}

	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &Azure{client: client}, nil
}

// Open resolves the blob size and returns a File backed by ranged downloads.
func (a *Azure) Open(ctx context.Context, location string) (File, error) {
	container, key, _, err := ParseAzurePath(location)
	if err != nil {
		return nil, err
	}

	props, err := a.client.ServiceClient().NewContainerClient(container).NewBlobClient(key).GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	var size int64
	if props.ContentLength != nil {
		size = *props.ContentLength
	}

	return newRemoteFile(ctx, size, func(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
		resp, err := a.client.DownloadStream(ctx, container, key, &azblob.DownloadStreamOptions{
			Range: azblob.HTTPRange{Offset: offset, Count: length},
		})
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}), nil
}

// ParseAzurePath extracts container, blob key and, for abfss URIs, the
// storage account from an Azure location.
//
// Supported formats:
//
//	az://container/path/to/file
//	abfss://container@account.dfs.core.windows.net/path/to/file
func ParseAzurePath(location string) (container, key, account string, err error) {
	switch Scheme(location) {
	case SchemeAzure:
		container, key, err = splitLocation(location, SchemeAzure)
		if err != nil {
			return "", "", "", err
		}
	case SchemeABFSS:
		var authority string
		authority, key, err = splitLocation(location, SchemeABFSS)
		if err != nil {
			return "", "", "", err
		}
		var host string
		var ok bool
		container, host, ok = strings.Cut(authority, "@")
		if !ok {
			return "", "", "", fmt.Errorf("abfss path %q missing container@account component", location)
		}
		account, _, _ = strings.Cut(host, ".")
	default:
		return "", "", "", fmt.Errorf("unrecognized Azure path scheme in %q", location)
	}

	if container == "" {
		return "", "", account, fmt.Errorf("empty container in Azure path %q", location)
	}
	if key == "" {
		return container, "", account, fmt.Errorf("empty key in Azure path %q", location)
	}
	return container, key, account, nil
}
