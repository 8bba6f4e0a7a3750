package upload

import (
	"context"
	"fmt"

	"github.com/objstream/go-s3upload/upload/network"
)

type fakeUpload struct {
	addr      network.Address
	body      []byte
	parts     []network.Part
	partSizes []int
	completed bool
	aborted   bool
}

// fakeClient records every remote operation so tests can assert on call
// counts, part numbering and the assembled object bytes.
type fakeClient struct {
	uploads map[string]*fakeUpload
	order   []string

	createCalls   int
	partCalls     int
	completeCalls int
	abortCalls    int

	failCreate     bool
	failPartNumber int32
	failComplete   bool
	failAbort      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{uploads: map[string]*fakeUpload{}}
}

func (c *fakeClient) CreateUpload(ctx context.Context, addr network.Address) (string, error) {
	c.createCalls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.failCreate {
		return "", fmt.Errorf("fake: create failed")
	}
	id := fmt.Sprintf("upload-%d", c.createCalls)
	c.uploads[id] = &fakeUpload{addr: addr}
	c.order = append(c.order, id)
	return id, nil
}

func (c *fakeClient) UploadPart(ctx context.Context, up network.Upload, number int32, body []byte) (string, error) {
	c.partCalls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.failPartNumber != 0 && number == c.failPartNumber {
		return "", fmt.Errorf("fake: part %d failed", number)
	}
	u, ok := c.uploads[up.ID]
	if !ok {
		return "", fmt.Errorf("fake: unknown upload %s", up.ID)
	}
	if u.completed || u.aborted {
		return "", fmt.Errorf("fake: upload %s is finished", up.ID)
	}
	etag := fmt.Sprintf("%q", fmt.Sprintf("etag-%s-%d", up.ID, number))
	u.body = append(u.body, body...)
	u.parts = append(u.parts, network.Part{Number: number, ETag: etag})
	u.partSizes = append(u.partSizes, len(body))
	return etag, nil
}

func (c *fakeClient) CompleteUpload(ctx context.Context, up network.Upload, parts []network.Part) (network.Object, error) {
	c.completeCalls++
	if err := ctx.Err(); err != nil {
		return network.Object{}, err
	}
	if c.failComplete {
		return network.Object{}, fmt.Errorf("fake: complete failed")
	}
	u, ok := c.uploads[up.ID]
	if !ok {
		return network.Object{}, fmt.Errorf("fake: unknown upload %s", up.ID)
	}
	if len(parts) == 0 {
		return network.Object{}, fmt.Errorf("fake: complete with no parts")
	}
	u.completed = true
	return network.Object{
		Address: up.Address,
		ETag:    fmt.Sprintf("%q", "object-"+up.ID),
	}, nil
}

func (c *fakeClient) AbortUpload(ctx context.Context, up network.Upload) error {
	c.abortCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.failAbort {
		return fmt.Errorf("fake: abort failed")
	}
	if u, ok := c.uploads[up.ID]; ok {
		u.aborted = true
	}
	return nil
}

// lastUpload returns the most recently created fake upload.
func (c *fakeClient) lastUpload() *fakeUpload {
	if len(c.order) == 0 {
		return nil
	}
	return c.uploads[c.order[len(c.order)-1]]
}
