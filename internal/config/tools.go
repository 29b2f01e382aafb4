package config

// ToolsConfig configures which Gromacs tools are wrapped and how their
// executables are named.
type ToolsConfig struct {
	// Groups are ordered collections of Gromacs tool names to wrap.
	// Grouping mirrors the upstream distribution layout; the registry
	// flattens them.
	Groups [][]string `yaml:"groups"`

	// Suffix is appended to every tool name to form the executable
	// (e.g. "_mpi" for MPI builds, "_d" for double precision, "" for
	// plain builds).
	Suffix string `yaml:"suffix"`

	// MultiIndex lists tools that cannot read more than one index file
	// natively and therefore get the combined-index emulation.
	MultiIndex []string `yaml:"multi_index"`
}

// gmxCoreTools are the setup and run tools of a Gromacs 4.x installation.
var gmxCoreTools = []string{
	"editconf", "eneconv", "genbox", "genconf", "genion", "genrestr",
	"gmxcheck", "gmxdump", "grompp", "make_edi", "make_ndx", "mdrun",
	"mk_angndx", "pdb2gmx", "tpbconv", "trjcat", "trjconv", "trjorder",
	"xpm2ps",
}

// gmxAnalysisTools are the g_* analysis tools plus the bundled scripts.
var gmxAnalysisTools = []string{
	"demux.pl", "do_dssp", "g_anaeig", "g_analyze", "g_angle", "g_bond",
	"g_bundle", "g_chi", "g_cluster", "g_confrms", "g_covar", "g_density",
	"g_dielectric", "g_dih", "g_dipoles", "g_disre", "g_dist", "g_dyndom",
	"g_enemat", "g_energy", "g_filter", "g_gyrate", "g_h2order", "g_hbond",
	"g_helix", "g_lie", "g_mdmat", "g_mindist", "g_msd", "g_nmeig",
	"g_nmens", "g_order", "g_polystat", "g_potential", "g_principal",
	"g_rama", "g_rdf", "g_rms", "g_rmsdist", "g_rmsf", "g_rotacf",
	"g_saltbr", "g_sas", "g_sgangle", "g_sham", "g_sorient", "g_spatial",
	"g_spol", "g_tcaf", "g_traj", "g_vanhove", "g_velacc", "g_wham",
	"xplor2gmx.pl",
}

// DefaultToolsConfig returns the standard tool set.
func DefaultToolsConfig() ToolsConfig {
	return ToolsConfig{
		Groups: [][]string{gmxCoreTools, gmxAnalysisTools},
		Suffix: "_mpi",
		// g_mindist and g_dist cannot deal with multiple ndx files
		// (at least up to 4.0.5), so they get the combined-index
		// emulation.
		MultiIndex: []string{"g_mindist", "g_dist"},
	}
}
