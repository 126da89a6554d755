// Package testutil: in-memory реализация repository.Store для тестов сервисов.
// Ключи уникальности те же, что и в PostgreSQL (см. database.Migrate).
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"gorm.io/gorm"
)

type memData struct {
	nextID uint

	orgs        map[uint]models.Organization
	users       map[uint]models.User
	assets      map[uint]models.Asset
	vulns       map[uint]models.Vulnerability
	risks       map[uint]models.AssetVulnerability
	domains     map[uint]models.IsoDomain
	controls    map[uint]models.IsoControl
	assessments map[uint]models.ControlAssessment
	findings    map[uint]models.AuditFinding
	reports     map[uint]models.AuditReport
	logs        []models.AuditLog

	failures map[string]error
}

func newMemData() *memData {
	return &memData{
		orgs:        map[uint]models.Organization{},
		users:       map[uint]models.User{},
		assets:      map[uint]models.Asset{},
		vulns:       map[uint]models.Vulnerability{},
		risks:       map[uint]models.AssetVulnerability{},
		domains:     map[uint]models.IsoDomain{},
		controls:    map[uint]models.IsoControl{},
		assessments: map[uint]models.ControlAssessment{},
		findings:    map[uint]models.AuditFinding{},
		reports:     map[uint]models.AuditReport{},
		failures:    map[string]error{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	out := &memData{
		nextID:      d.nextID,
		orgs:        copyMap(d.orgs),
		users:       copyMap(d.users),
		assets:      copyMap(d.assets),
		vulns:       copyMap(d.vulns),
		risks:       copyMap(d.risks),
		domains:     copyMap(d.domains),
		controls:    copyMap(d.controls),
		assessments: copyMap(d.assessments),
		findings:    copyMap(d.findings),
		reports:     copyMap(d.reports),
		logs:        append([]models.AuditLog(nil), d.logs...),
		failures:    d.failures,
	}
	return out
}

func (d *memData) id() uint {
	d.nextID++
	return d.nextID
}

type memShared struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *memData
}

// MemStore безопасен для конкурентного чтения (errgroup в сервисах).
type MemStore struct {
	sh   *memShared
	inTx bool
}

var _ repository.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{sh: &memShared{data: newMemData()}}
}

// Fail заставляет операцию op ("assets.list", "findings.create", ...) возвращать err.
// nil снимает сбой.
func (s *MemStore) Fail(op string, err error) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	if err == nil {
		delete(s.sh.data.failures, op)
		return
	}
	s.sh.data.failures[op] = err
}

// lock возвращает данные под мьютексом и ошибку внедрённого сбоя, если есть.
func (s *MemStore) lock(op string) (*memData, func(), error) {
	s.sh.mu.Lock()
	d := s.sh.data
	if err := d.failures[op]; err != nil {
		s.sh.mu.Unlock()
		return nil, func() {}, err
	}
	return d, s.sh.mu.Unlock, nil
}

func (s *MemStore) Organizations() repository.OrganizationRepository { return memOrgs{s} }
func (s *MemStore) Users() repository.UserRepository                 { return memUsers{s} }
func (s *MemStore) Assets() repository.AssetRepository               { return memAssets{s} }
func (s *MemStore) Vulnerabilities() repository.VulnerabilityRepository {
	return memVulns{s}
}
func (s *MemStore) Risks() repository.RiskRepository         { return memRisks{s} }
func (s *MemStore) Controls() repository.ControlRepository   { return memControls{s} }
func (s *MemStore) Findings() repository.FindingRepository   { return memFindings{s} }
func (s *MemStore) Reports() repository.ReportRepository     { return memReports{s} }
func (s *MemStore) AuditLogs() repository.AuditLogRepository { return memLogs{s} }

// Transaction: при ошибке fn состояние откатывается к снимку до начала.
func (s *MemStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.sh.txMu.Lock()
	defer s.sh.txMu.Unlock()

	s.sh.mu.Lock()
	if err := s.sh.data.failures["transaction"]; err != nil {
		s.sh.mu.Unlock()
		return err
	}
	saved := s.sh.data.clone()
	s.sh.mu.Unlock()

	if err := fn(&MemStore{sh: s.sh, inTx: true}); err != nil {
		s.sh.mu.Lock()
		saved.failures = s.sh.data.failures
		s.sh.data = saved
		s.sh.mu.Unlock()
		return err
	}
	return nil
}

// ====== организации / пользователи ======

type memOrgs struct{ s *MemStore }

func (r memOrgs) Create(_ context.Context, org *models.Organization) error {
	d, unlock, err := r.s.lock("organizations.create")
	defer unlock()
	if err != nil {
		return err
	}
	now := time.Now()
	org.ID = d.id()
	org.CreatedAt, org.UpdatedAt = now, now
	if org.RiskAppetite == "" {
		org.RiskAppetite = "medium"
	}
	d.orgs[org.ID] = *org
	return nil
}

func (r memOrgs) Get(_ context.Context, id uint) (*models.Organization, error) {
	d, unlock, err := r.s.lock("organizations.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	org, ok := d.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

func (r memOrgs) Update(_ context.Context, org *models.Organization) error {
	d, unlock, err := r.s.lock("organizations.update")
	defer unlock()
	if err != nil {
		return err
	}
	old, ok := d.orgs[org.ID]
	if !ok {
		return repository.ErrNotFound
	}
	org.CreatedAt, org.CreatedBy = old.CreatedAt, old.CreatedBy
	org.UpdatedAt = time.Now()
	d.orgs[org.ID] = *org
	return nil
}

type memUsers struct{ s *MemStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	d, unlock, err := r.s.lock("users.create")
	defer unlock()
	if err != nil {
		return err
	}
	for _, other := range d.users {
		if other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = d.id()
	u.CreatedAt, u.UpdatedAt = now, now
	d.users[u.ID] = *u
	return nil
}

func (r memUsers) Get(_ context.Context, id uint) (*models.User, error) {
	d, unlock, err := r.s.lock("users.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	d, unlock, err := r.s.lock("users.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	for _, u := range d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	d, unlock, err := r.s.lock("users.update")
	defer unlock()
	if err != nil {
		return err
	}
	old, ok := d.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = time.Now()
	d.users[u.ID] = *u
	return nil
}

func (r memUsers) CountByRole(_ context.Context, role models.UserRole) (int64, error) {
	d, unlock, err := r.s.lock("users.count")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, u := range d.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ====== активы ======

type memAssets struct{ s *MemStore }

func (r memAssets) Create(_ context.Context, a *models.Asset) error {
	d, unlock, err := r.s.lock("assets.create")
	defer unlock()
	if err != nil {
		return err
	}
	now := time.Now()
	a.ID = d.id()
	a.CreatedAt, a.UpdatedAt = now, now
	d.assets[a.ID] = *a
	return nil
}

func (r memAssets) Update(_ context.Context, a *models.Asset) error {
	d, unlock, err := r.s.lock("assets.update")
	defer unlock()
	if err != nil {
		return err
	}
	old, ok := d.assets[a.ID]
	if !ok || old.OrganizationID != a.OrganizationID {
		return repository.ErrNotFound
	}
	a.CreatedAt, a.CreatedBy = old.CreatedAt, old.CreatedBy
	a.UpdatedAt = time.Now()
	d.assets[a.ID] = *a
	return nil
}

func (r memAssets) Get(_ context.Context, orgID, id uint) (*models.Asset, error) {
	d, unlock, err := r.s.lock("assets.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	a, ok := d.assets[id]
	if !ok || a.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r memAssets) List(_ context.Context, orgID uint) ([]models.Asset, error) {
	d, unlock, err := r.s.lock("assets.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.Asset
	for _, a := range d.assets {
		if a.OrganizationID == orgID && a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memAssets) Deactivate(_ context.Context, orgID, id uint) error {
	d, unlock, err := r.s.lock("assets.update")
	defer unlock()
	if err != nil {
		return err
	}
	a, ok := d.assets[id]
	if !ok || a.OrganizationID != orgID || !a.IsActive {
		return repository.ErrNotFound
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	d.assets[id] = a
	return nil
}

// ====== уязвимости / риски ======

type memVulns struct{ s *MemStore }

func (r memVulns) List(_ context.Context) ([]models.Vulnerability, error) {
	d, unlock, err := r.s.lock("vulnerabilities.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.Vulnerability
	for _, v := range d.vulns {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r memVulns) Get(_ context.Context, id uint) (*models.Vulnerability, error) {
	d, unlock, err := r.s.lock("vulnerabilities.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	v, ok := d.vulns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

type memRisks struct{ s *MemStore }

func (r memRisks) Upsert(_ context.Context, av *models.AssetVulnerability) error {
	d, unlock, err := r.s.lock("risks.upsert")
	defer unlock()
	if err != nil {
		return err
	}
	now := time.Now()
	row := *av
	row.Asset, row.Vulnerability = models.Asset{}, models.Vulnerability{}
	row.UpdatedAt = now

	for id, old := range d.risks {
		if old.AssetID == av.AssetID && old.VulnerabilityID == av.VulnerabilityID {
			row.ID = id
			row.CreatedAt = old.CreatedAt
			row.OrganizationID = old.OrganizationID
			d.risks[id] = row
			av.ID, av.CreatedAt, av.UpdatedAt = id, old.CreatedAt, now
			return nil
		}
	}

	row.ID = d.id()
	row.CreatedAt = now
	d.risks[row.ID] = row
	av.ID, av.CreatedAt, av.UpdatedAt = row.ID, now, now
	return nil
}

func (d *memData) withRiskRefs(av models.AssetVulnerability) models.AssetVulnerability {
	av.Asset = d.assets[av.AssetID]
	av.Vulnerability = d.vulns[av.VulnerabilityID]
	return av
}

func (r memRisks) Get(_ context.Context, orgID, id uint) (*models.AssetVulnerability, error) {
	d, unlock, err := r.s.lock("risks.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	av, ok := d.risks[id]
	if !ok || av.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	av = d.withRiskRefs(av)
	return &av, nil
}

func (r memRisks) Delete(_ context.Context, orgID, id uint) error {
	d, unlock, err := r.s.lock("risks.delete")
	defer unlock()
	if err != nil {
		return err
	}
	av, ok := d.risks[id]
	if !ok || av.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	delete(d.risks, id)
	return nil
}

func (r memRisks) List(_ context.Context, f repository.RiskFilter) ([]models.AssetVulnerability, error) {
	d, unlock, err := r.s.lock("risks.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.AssetVulnerability
	for _, av := range d.risks {
		if av.OrganizationID != f.OrganizationID {
			continue
		}
		if f.AssetID != 0 && av.AssetID != f.AssetID {
			continue
		}
		if len(f.Levels) > 0 && !contains(f.Levels, av.RiskLevel) {
			continue
		}
		out = append(out, d.withRiskRefs(av))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ====== Annex A ======

type memControls struct{ s *MemStore }

func (d *memData) sortedControls() []models.IsoControl {
	out := make([]models.IsoControl, 0, len(d.controls))
	for _, c := range d.controls {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DomainID != out[j].DomainID {
			return out[i].DomainID < out[j].DomainID
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r memControls) ListDomains(_ context.Context) ([]models.IsoDomain, error) {
	d, unlock, err := r.s.lock("controls.domains")
	defer unlock()
	if err != nil {
		return nil, err
	}
	controls := d.sortedControls()
	out := make([]models.IsoDomain, 0, len(d.domains))
	for _, dom := range d.domains {
		dom.Controls = nil
		for _, c := range controls {
			if c.DomainID == dom.ID {
				dom.Controls = append(dom.Controls, c)
			}
		}
		out = append(out, dom)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memControls) ListControls(_ context.Context) ([]models.IsoControl, error) {
	d, unlock, err := r.s.lock("controls.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	return d.sortedControls(), nil
}

func (r memControls) GetControl(_ context.Context, id uint) (*models.IsoControl, error) {
	d, unlock, err := r.s.lock("controls.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	c, ok := d.controls[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r memControls) UpsertAssessment(_ context.Context, a *models.ControlAssessment) error {
	d, unlock, err := r.s.lock("controls.upsert")
	defer unlock()
	if err != nil {
		return err
	}
	now := time.Now()
	row := *a
	row.Control = models.IsoControl{}
	row.UpdatedAt = now

	for id, old := range d.assessments {
		if old.OrganizationID == a.OrganizationID && old.ControlID == a.ControlID {
			row.ID = id
			row.CreatedAt, row.CreatedBy = old.CreatedAt, old.CreatedBy
			d.assessments[id] = row
			a.ID, a.CreatedAt, a.UpdatedAt = id, old.CreatedAt, now
			return nil
		}
	}

	row.ID = d.id()
	row.CreatedAt = now
	d.assessments[row.ID] = row
	a.ID, a.CreatedAt, a.UpdatedAt = row.ID, now, now
	return nil
}

func (r memControls) ListAssessments(_ context.Context, f repository.AssessmentFilter) ([]models.ControlAssessment, error) {
	d, unlock, err := r.s.lock("controls.assessments")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.ControlAssessment
	for _, a := range d.assessments {
		if a.OrganizationID != f.OrganizationID {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, a.Status) {
			continue
		}
		a.Control = d.controls[a.ControlID]
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ControlID < out[j].ControlID })
	return out, nil
}

// ====== находки ======

type memFindings struct{ s *MemStore }

func sameOrigin(a, b models.AuditFinding) bool {
	if a.OrganizationID != b.OrganizationID || a.Source != b.Source {
		return false
	}
	switch a.Source {
	case models.SourceRiskAssessment:
		return a.VulnerabilityID != nil && b.VulnerabilityID != nil && *a.VulnerabilityID == *b.VulnerabilityID
	case models.SourceChecklist:
		return a.RelatedControlID != nil && b.RelatedControlID != nil && *a.RelatedControlID == *b.RelatedControlID
	}
	return false
}

func (r memFindings) Create(_ context.Context, f *models.AuditFinding) error {
	d, unlock, err := r.s.lock("findings.create")
	defer unlock()
	if err != nil {
		return err
	}
	for _, other := range d.findings {
		if sameOrigin(*f, other) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	f.ID = d.id()
	f.CreatedAt, f.UpdatedAt = now, now
	row := *f
	row.Asset, row.Control, row.Vulnerability = nil, nil, nil
	d.findings[f.ID] = row
	return nil
}

func (d *memData) withFindingRefs(f models.AuditFinding) models.AuditFinding {
	if f.AffectedAssetID != nil {
		if a, ok := d.assets[*f.AffectedAssetID]; ok {
			f.Asset = &a
		}
	}
	if f.RelatedControlID != nil {
		if c, ok := d.controls[*f.RelatedControlID]; ok {
			f.Control = &c
		}
	}
	if f.VulnerabilityID != nil {
		if v, ok := d.vulns[*f.VulnerabilityID]; ok {
			f.Vulnerability = &v
		}
	}
	return f
}

func (r memFindings) Get(_ context.Context, orgID, id uint) (*models.AuditFinding, error) {
	d, unlock, err := r.s.lock("findings.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	f, ok := d.findings[id]
	if !ok || f.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	f = d.withFindingRefs(f)
	return &f, nil
}

func (r memFindings) Update(_ context.Context, f *models.AuditFinding) error {
	d, unlock, err := r.s.lock("findings.update")
	defer unlock()
	if err != nil {
		return err
	}
	old, ok := d.findings[f.ID]
	if !ok || old.OrganizationID != f.OrganizationID {
		return repository.ErrNotFound
	}
	f.CreatedAt, f.CreatedBy = old.CreatedAt, old.CreatedBy
	f.UpdatedAt = time.Now()
	row := *f
	row.Asset, row.Control, row.Vulnerability = nil, nil, nil
	d.findings[f.ID] = row
	return nil
}

func (r memFindings) Delete(_ context.Context, orgID, id uint) error {
	d, unlock, err := r.s.lock("findings.delete")
	defer unlock()
	if err != nil {
		return err
	}
	f, ok := d.findings[id]
	if !ok || f.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	delete(d.findings, id)
	return nil
}

func (r memFindings) List(_ context.Context, flt repository.FindingFilter) ([]models.AuditFinding, error) {
	d, unlock, err := r.s.lock("findings.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.AuditFinding
	for _, f := range d.findings {
		if f.OrganizationID != flt.OrganizationID {
			continue
		}
		if len(flt.Sources) > 0 && !contains(flt.Sources, f.Source) {
			continue
		}
		if len(flt.Severities) > 0 && !contains(flt.Severities, f.Severity) {
			continue
		}
		if len(flt.Statuses) > 0 && !contains(flt.Statuses, f.Status) {
			continue
		}
		out = append(out, d.withFindingRefs(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ====== отчёты ======

type memReports struct{ s *MemStore }

func (r memReports) NextVersion(_ context.Context, orgID uint) (int, error) {
	d, unlock, err := r.s.lock("reports.next_version")
	defer unlock()
	if err != nil {
		return 0, err
	}
	if _, ok := d.orgs[orgID]; !ok {
		return 0, repository.ErrNotFound
	}
	last := 0
	for _, rep := range d.reports {
		if rep.OrganizationID == orgID && rep.Version > last {
			last = rep.Version
		}
	}
	return last + 1, nil
}

func (r memReports) Create(_ context.Context, rep *models.AuditReport) error {
	d, unlock, err := r.s.lock("reports.create")
	defer unlock()
	if err != nil {
		return err
	}
	for _, other := range d.reports {
		if other.OrganizationID == rep.OrganizationID && other.Version == rep.Version {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	rep.ID = d.id()
	rep.CreatedAt, rep.UpdatedAt = now, now
	if rep.Status == "" {
		rep.Status = models.ReportStatusFinal
	}
	row := *rep
	row.Snapshot = rep.Snapshot.Clone()
	d.reports[rep.ID] = row
	return nil
}

func (d *memData) liveReport(orgID, id uint) (models.AuditReport, bool) {
	rep, ok := d.reports[id]
	if !ok || rep.OrganizationID != orgID || rep.DeletedAt.Valid {
		return models.AuditReport{}, false
	}
	return rep, true
}

func (r memReports) Get(_ context.Context, orgID, id uint) (*models.AuditReport, error) {
	d, unlock, err := r.s.lock("reports.get")
	defer unlock()
	if err != nil {
		return nil, err
	}
	rep, ok := d.liveReport(orgID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	rep.Snapshot = rep.Snapshot.Clone()
	return &rep, nil
}

func (r memReports) List(_ context.Context, orgID uint) ([]models.AuditReport, error) {
	d, unlock, err := r.s.lock("reports.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []models.AuditReport
	for _, rep := range d.reports {
		if rep.OrganizationID == orgID && !rep.DeletedAt.Valid {
			rep.Snapshot = rep.Snapshot.Clone()
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r memReports) UpdateNarrative(_ context.Context, orgID, id uint, n models.ReportNarrative) error {
	d, unlock, err := r.s.lock("reports.update")
	defer unlock()
	if err != nil {
		return err
	}
	rep, ok := d.liveReport(orgID, id)
	if !ok {
		return repository.ErrNotFound
	}
	rep.Narrative = n
	rep.UpdatedAt = time.Now()
	d.reports[id] = rep
	return nil
}

func (r memReports) Delete(_ context.Context, orgID, id uint) error {
	d, unlock, err := r.s.lock("reports.delete")
	defer unlock()
	if err != nil {
		return err
	}
	rep, ok := d.liveReport(orgID, id)
	if !ok {
		return repository.ErrNotFound
	}
	rep.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	d.reports[id] = rep
	return nil
}

// ====== журнал действий ======

type memLogs struct{ s *MemStore }

func (r memLogs) Create(_ context.Context, l *models.AuditLog) error {
	d, unlock, err := r.s.lock("audit_logs.create")
	defer unlock()
	if err != nil {
		return err
	}
	l.ID = d.id()
	l.CreatedAt = time.Now()
	row := *l
	row.User = models.User{}
	d.logs = append(d.logs, row)
	return nil
}

func (r memLogs) List(_ context.Context, orgID uint, limit int) ([]models.AuditLog, error) {
	d, unlock, err := r.s.lock("audit_logs.list")
	defer unlock()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	var out []models.AuditLog
	for i := len(d.logs) - 1; i >= 0 && len(out) < limit; i-- {
		l := d.logs[i]
		if l.OrganizationID != orgID {
			continue
		}
		l.User = d.users[l.UserID]
		out = append(out, l)
	}
	return out, nil
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
