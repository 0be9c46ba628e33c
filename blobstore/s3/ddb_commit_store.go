package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/chunkvec/blobstore"
)

// CurrentName is the blob base name DDBCommitStore stores in DynamoDB
// instead of S3.
const CurrentName = "CURRENT"

// DDBCommitStore implements blobstore.BlobStore backed by S3 with DynamoDB
// for atomic CURRENT pointer updates. This enables safe concurrent committers.
//
// Every blob whose base name is CURRENT lives in DynamoDB as a versioned
// commit log; a Put appends the next version with a conditional write and
// fails with ErrConcurrentModification if another writer got there first.
// All other blobs go to S3.
//
// Table schema:
//   - Partition key: base_uri (string) - the store URI plus the pointer's directory
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name chunkvec-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when a concurrent commit is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewDDBCommitStore creates a new S3+DynamoDB commit store.
// The baseURI (e.g. "s3://bucket/prefix") namespaces the commit log.
func NewDDBCommitStore(s3Store *Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func isCurrent(name string) bool {
	return path.Base(name) == CurrentName
}

func (s *DDBCommitStore) partition(name string) string {
	if dir := path.Dir(name); dir != "." {
		return s.baseURI + "#" + dir
	}
	return s.baseURI
}

// Open opens a blob for reading. CURRENT pointers are served from DynamoDB.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isCurrent(name) {
		return s.s3Store.Open(ctx, name)
	}
	version, target, err := s.latest(ctx, s.partition(name))
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &pointerBlob{content: []byte(target)}, nil
}

// Put writes a blob. CURRENT pointers use a DynamoDB conditional write.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if isCurrent(name) {
		return s.commit(ctx, s.partition(name), string(data))
	}
	return s.s3Store.Put(ctx, name, data)
}

// Create creates a writable blob in S3.
func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if isCurrent(name) {
		return nil, fmt.Errorf("s3: %s must be written with Put", name)
	}
	return s.s3Store.Create(ctx, name)
}

// Delete deletes a blob from S3. Deleting a CURRENT pointer removes its
// latest version, exposing the previous one.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if !isCurrent(name) {
		return s.s3Store.Delete(ctx, name)
	}
	partition := s.partition(name)
	version, _, err := s.latest(ctx, partition)
	if err != nil || version == 0 {
		return err
	}
	_, err = s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: partition},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
	})
	return err
}

// List lists S3 blobs with prefix. CURRENT pointers are not listed.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// Version returns the latest committed version of the pointer name (0 if none).
func (s *DDBCommitStore) Version(ctx context.Context, name string) (uint64, error) {
	version, _, err := s.latest(ctx, s.partition(name))
	return version, err
}

func (s *DDBCommitStore) latest(ctx context.Context, partition string) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: partition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	targetAttr, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid target attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, targetAttr.Value, nil
}

func (s *DDBCommitStore) commit(ctx context.Context, partition, target string) error {
	current, _, err := s.latest(ctx, partition)
	if err != nil {
		return err
	}

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: partition},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}

// pointerBlob is an in-memory blob holding a CURRENT pointer's target.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error {
	return nil
}

func (b *pointerBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *pointerBlob) Bytes() ([]byte, error) {
	return b.content, nil
}

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *pointerBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off > int64(len(b.content)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(b.content)))
	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}
