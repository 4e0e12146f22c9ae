package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/platform/elastic/query"
)

// FakeCluster is an in-memory elastic.API. It keeps users, indices and
// documents, validates documents against their mapping, and evaluates the
// subset of the query DSL the provisioner sends.
//
// Documents become searchable only after Refresh, like on a real cluster;
// GetDocument is realtime.
type FakeCluster struct {
	mu sync.Mutex

	health  elastic.Health
	roles   map[string]struct{}
	users   map[string]*fakeUser
	indices map[string]*fakeIndex

	calls    []string
	failures []*failure
}

type fakeUser struct {
	record       elastic.User
	password     string
	passwordHash string
	writes       int
}

type fakeIndex struct {
	settings   elastic.IndexSettings
	properties elastic.Properties
	docs       map[string][]byte // raw _source
	searchable map[string][]byte // docs as of the last refresh
}

type failure struct {
	match string
	err   error
	times int // 0 means every time
	fired int
}

// BuiltinRoles are the roles a FakeCluster knows without AddRole.
var BuiltinRoles = []string{
	"superuser", "viewer", "editor", "kibana_admin", "kibana_system",
	"monitoring_user", "ingest_admin", "logstash_system",
}

// NewFakeCluster returns an empty green single-node cluster.
func NewFakeCluster() *FakeCluster {
	f := &FakeCluster{
		health: elastic.Health{
			ClusterName:   "fake-cluster",
			Status:        elastic.HealthGreen,
			NumberOfNodes: 1,
		},
		roles:   make(map[string]struct{}),
		users:   make(map[string]*fakeUser),
		indices: make(map[string]*fakeIndex),
	}
	for _, r := range BuiltinRoles {
		f.roles[r] = struct{}{}
	}
	return f
}

// SetHealth replaces the health answer.
func (f *FakeCluster) SetHealth(h elastic.Health) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = h
}

// AddRole makes a role name known to the cluster.
func (f *FakeCluster) AddRole(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[name] = struct{}{}
}

// FailOn makes calls matching match return err. match is either an
// operation ("CreateIndex") or an operation with its target as recorded by
// Calls ("CreateIndex articles"). times bounds how often the failure fires;
// 0 means always.
func (f *FakeCluster) FailOn(match string, err error, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, &failure{match: match, err: err, times: times})
}

// Calls returns every call made so far, e.g. "PutUser alice".
func (f *FakeCluster) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many recorded calls start with prefix.
func (f *FakeCluster) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == prefix || strings.HasPrefix(c, prefix+" ") {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls.
func (f *FakeCluster) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// UserRecord returns a copy of a stored user and the number of writes it
// has seen.
func (f *FakeCluster) UserRecord(name string) (elastic.User, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[name]
	if !ok {
		return elastic.User{}, 0, false
	}
	rec := u.record
	rec.Roles = slices.Clone(rec.Roles)
	return rec, u.writes, true
}

// UserPassword returns the stored password and password hash of a user.
func (f *FakeCluster) UserPassword(name string) (password, hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[name]; ok {
		return u.password, u.passwordHash
	}
	return "", ""
}

// IndexSettings returns the settings of an index.
func (f *FakeCluster) IndexSettings(name string) (elastic.IndexSettings, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, ok := f.indices[name]
	if !ok {
		return elastic.IndexSettings{}, false
	}
	return idx.settings, true
}

// DocumentIDs returns the ids stored in an index, sorted.
func (f *FakeCluster) DocumentIDs(index string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, ok := f.indices[index]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(idx.docs))
}

// record logs a call and returns the injected failure for it, if any.
func (f *FakeCluster) record(op, target string) error {
	call := op
	if target != "" {
		call = op + " " + target
	}
	f.calls = append(f.calls, call)

	for _, fl := range f.failures {
		if fl.match != op && fl.match != call {
			continue
		}
		if fl.times > 0 && fl.fired >= fl.times {
			continue
		}
		fl.fired++
		return fl.err
	}
	return nil
}

// Health implements elastic.API.
func (f *FakeCluster) Health(_ context.Context) (*elastic.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Health", ""); err != nil {
		return nil, err
	}
	h := f.health
	return &h, nil
}

// GetUser implements elastic.UserManager.
func (f *FakeCluster) GetUser(_ context.Context, name string) (*elastic.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetUser", name); err != nil {
		return nil, err
	}
	u, ok := f.users[name]
	if !ok {
		return nil, nil
	}
	rec := u.record
	rec.Roles = slices.Clone(rec.Roles)
	return &rec, nil
}

// PutUser implements elastic.UserManager.
func (f *FakeCluster) PutUser(_ context.Context, name string, req elastic.PutUserRequest) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "put user " + name
	if err := f.record("PutUser", name); err != nil {
		return false, err
	}

	existing, exists := f.users[name]
	switch {
	case req.Password == "" && req.PasswordHash == "" && !exists:
		return false, ValidationError(op, "action_request_validation_exception", "Validation Failed: 1: password must be specified unless you are updating an existing user;")
	case req.Password != "" && len(req.Password) < 6:
		return false, ValidationError(op, "action_request_validation_exception", "Validation Failed: 1: passwords must be at least [6] characters long;")
	}
	for _, r := range req.Roles {
		if _, ok := f.roles[r]; !ok {
			return false, ValidationError(op, "illegal_argument_exception", fmt.Sprintf("unknown role [%s]", r))
		}
	}

	if !exists {
		existing = &fakeUser{}
		f.users[name] = existing
	}
	existing.record = elastic.User{
		Username: name,
		Roles:    slices.Clone(req.Roles),
		FullName: req.FullName,
		Email:    req.Email,
		Metadata: req.Metadata,
		Enabled:  true,
	}
	if req.Password != "" || req.PasswordHash != "" {
		existing.password = req.Password
		existing.passwordHash = req.PasswordHash
	}
	existing.writes++
	return !exists, nil
}

// Authenticate implements elastic.UserManager. It accepts the stored
// password or, for users written with a hash, any password matching it.
func (f *FakeCluster) Authenticate(_ context.Context, name, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Authenticate", name); err != nil {
		return false, err
	}
	u, ok := f.users[name]
	if !ok {
		return false, nil
	}
	if u.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil, nil
	}
	return u.password != "" && u.password == password, nil
}

// IndexExists implements elastic.IndexManager.
func (f *FakeCluster) IndexExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("IndexExists", name); err != nil {
		return false, err
	}
	_, ok := f.indices[name]
	return ok, nil
}

// CreateIndex implements elastic.IndexManager.
func (f *FakeCluster) CreateIndex(_ context.Context, name string, def elastic.IndexDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "create index " + name
	if err := f.record("CreateIndex", name); err != nil {
		return err
	}

	if _, ok := f.indices[name]; ok {
		return &elastic.APIError{
			Kind:   elastic.KindConflict,
			Op:     op,
			Status: http.StatusBadRequest,
			Type:   "resource_already_exists_exception",
			Reason: fmt.Sprintf("index [%s/fake] already exists", name),
		}
	}
	if def.Settings.NumberOfShards < 1 {
		return ValidationError(op, "illegal_argument_exception", "Failed to parse value [0] for setting [index.number_of_shards] must be >= 1")
	}
	if err := checkTypes(op, def.Mappings.Properties); err != nil {
		return err
	}

	f.indices[name] = &fakeIndex{
		settings:   def.Settings,
		properties: slices.Clone(def.Mappings.Properties),
		docs:       make(map[string][]byte),
		searchable: make(map[string][]byte),
	}
	return nil
}

var knownTypes = map[string]struct{}{
	"text": {}, "keyword": {}, "integer": {}, "long": {}, "short": {}, "byte": {},
	"float": {}, "double": {}, "half_float": {}, "scaled_float": {}, "unsigned_long": {},
	"boolean": {}, "date": {}, "object": {}, "nested": {}, "ip": {}, "geo_point": {},
}

func checkTypes(op string, props elastic.Properties) error {
	for _, p := range props {
		t := p.Mapping.Type
		if t == "" && len(p.Mapping.Properties) > 0 {
			t = "object"
		}
		if _, ok := knownTypes[t]; !ok {
			return &elastic.APIError{
				Kind:   elastic.KindValidation,
				Op:     op,
				Status: http.StatusBadRequest,
				Type:   "mapper_parsing_exception",
				Reason: fmt.Sprintf("No handler for type [%s] declared on field [%s]", p.Mapping.Type, p.Name),
			}
		}
		if err := checkTypes(op, p.Mapping.Properties); err != nil {
			return err
		}
	}
	return nil
}

// DeleteIndex implements elastic.IndexManager.
func (f *FakeCluster) DeleteIndex(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteIndex", name); err != nil {
		return err
	}
	if _, ok := f.indices[name]; !ok {
		return indexNotFound("delete index "+name, name)
	}
	delete(f.indices, name)
	return nil
}

// GetMapping implements elastic.IndexManager. Fields come back sorted by
// name, as the cluster returns them.
func (f *FakeCluster) GetMapping(_ context.Context, name string) (elastic.Properties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetMapping", name); err != nil {
		return nil, err
	}
	idx, ok := f.indices[name]
	if !ok {
		return nil, indexNotFound("get mapping "+name, name)
	}
	return idx.properties.Sorted(), nil
}

// Refresh implements elastic.IndexManager.
func (f *FakeCluster) Refresh(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Refresh", name); err != nil {
		return err
	}
	idx, ok := f.indices[name]
	if !ok {
		return indexNotFound("refresh index "+name, name)
	}
	idx.searchable = maps.Clone(idx.docs)
	return nil
}

// IndexDocument implements elastic.DocumentManager. Writing to a missing
// index creates it with dynamic mappings, like the cluster's default
// auto_create_index setting.
func (f *FakeCluster) IndexDocument(_ context.Context, index, id string, fields map[string]any) (elastic.DocumentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := fmt.Sprintf("index document %s/%s", index, id)
	if err := f.record("IndexDocument", index+"/"+id); err != nil {
		return "", err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", ValidationError(op, "document_parsing_exception", err.Error())
	}
	var source map[string]any
	if err := json.Unmarshal(raw, &source); err != nil {
		return "", ValidationError(op, "document_parsing_exception", err.Error())
	}

	idx, ok := f.indices[index]
	if !ok {
		idx = &fakeIndex{
			settings:   elastic.IndexSettings{NumberOfShards: 1, NumberOfReplicas: 1},
			docs:       make(map[string][]byte),
			searchable: make(map[string][]byte),
		}
		f.indices[index] = idx
	}

	props, err := mapDocument(op, idx.properties, source)
	if err != nil {
		return "", err
	}
	idx.properties = props

	_, existed := idx.docs[id]
	idx.docs[id] = raw
	if existed {
		return elastic.DocumentUpdated, nil
	}
	return elastic.DocumentCreated, nil
}

// GetDocument implements elastic.DocumentManager.
func (f *FakeCluster) GetDocument(_ context.Context, index, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDocument", index+"/"+id); err != nil {
		return nil, err
	}
	idx, ok := f.indices[index]
	if !ok {
		return nil, indexNotFound(fmt.Sprintf("get document %s/%s", index, id), index)
	}
	raw, ok := idx.docs[id]
	if !ok {
		return nil, nil
	}
	var source map[string]any
	if err := json.Unmarshal(raw, &source); err != nil {
		return nil, err
	}
	return source, nil
}

// Count implements elastic.DocumentManager. Like _count it only sees
// refreshed documents.
func (f *FakeCluster) Count(_ context.Context, index string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Count", index); err != nil {
		return 0, err
	}
	idx, ok := f.indices[index]
	if !ok {
		return 0, indexNotFound("count "+index, index)
	}
	return int64(len(idx.searchable)), nil
}

// Search implements elastic.Searcher.
func (f *FakeCluster) Search(_ context.Context, index string, req *query.Request) (*query.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "search " + index
	if err := f.record("Search", index); err != nil {
		return nil, err
	}
	idx, ok := f.indices[index]
	if !ok {
		return nil, indexNotFound(op, index)
	}

	docs := make([]searchDoc, 0, len(idx.searchable))
	for _, id := range slices.Sorted(maps.Keys(idx.searchable)) {
		var source map[string]any
		if err := json.Unmarshal(idx.searchable[id], &source); err != nil {
			return nil, err
		}
		docs = append(docs, searchDoc{id: id, source: source})
	}

	res, err := evaluate(index, idx.properties, docs, req)
	if err != nil {
		return nil, ValidationError(op, "search_phase_execution_exception", err.Error())
	}
	return res, nil
}

// ValidationError returns a 400 *elastic.APIError.
func ValidationError(op, errType, reason string) *elastic.APIError {
	return &elastic.APIError{
		Kind:   elastic.KindValidation,
		Op:     op,
		Status: http.StatusBadRequest,
		Type:   errType,
		Reason: reason,
		Body:   fmt.Sprintf(`{"error":{"type":%q,"reason":%q},"status":400}`, errType, reason),
	}
}

// AuthError returns a 401 *elastic.APIError.
func AuthError(op string) *elastic.APIError {
	return &elastic.APIError{
		Kind:   elastic.KindAuth,
		Op:     op,
		Status: http.StatusUnauthorized,
		Type:   "security_exception",
		Reason: "unable to authenticate user [elastic] for REST request",
	}
}

// ConnectionError returns a transport-level *elastic.APIError.
func ConnectionError(op string) *elastic.APIError {
	return &elastic.APIError{
		Kind: elastic.KindConnection,
		Op:   op,
		Err:  fmt.Errorf("dial tcp 127.0.0.1:9200: connect: connection refused"),
	}
}

// UnavailableError returns a 503 *elastic.APIError.
func UnavailableError(op string) *elastic.APIError {
	return &elastic.APIError{
		Kind:   elastic.KindUnavailable,
		Op:     op,
		Status: http.StatusServiceUnavailable,
	}
}

func indexNotFound(op, index string) *elastic.APIError {
	return &elastic.APIError{
		Kind:   elastic.KindNotFound,
		Op:     op,
		Status: http.StatusNotFound,
		Type:   "index_not_found_exception",
		Reason: fmt.Sprintf("no such index [%s]", index),
	}
}
