package config

// DefaultConfigYAML 内置默认配置
// 生产环境应通过外部配置文件或 CONSEC_ 前缀的环境变量覆盖敏感项（数据库密码、JWT 密钥）。
var DefaultConfigYAML = []byte(`server:
  port: ":8080"
  mode: "debug"
  base_url: "http://localhost:8080"

database:
  host: "127.0.0.1"
  port: "3306"
  username: "root"
  password: ""
  dbname: "consec"
  charset: "utf8mb4"

jwt:
  secret: "change-me-in-production"
  expire_days: 7

upload:
  dir: "uploads"
  max_size_mb: 5
  allowed_exts:
    - ".pdf"
    - ".jpg"
    - ".jpeg"
    - ".png"

email:
  enabled: false
  host: "smtp.example.com"
  port: 587
  username: ""
  password: ""
  from: ""
`)
